package handler

import (
	"io"
	"mime"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"paperaudit/internal/dto"
	"paperaudit/internal/logger"
	"paperaudit/internal/service"
)

// PaperHandler exposes the QC workflow over HTTP. Errors bubble up to the
// centralized error-handler middleware.
type PaperHandler struct {
	workflow service.WorkflowService
}

// NewPaperHandler creates a new PaperHandler instance
func NewPaperHandler(workflow service.WorkflowService) *PaperHandler {
	return &PaperHandler{workflow: workflow}
}

// RegisterRoutes mounts the workflow routes under the given router group.
func (h *PaperHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/questions", h.SubmitManual)
	api.Post("/questions/bulk-text", h.SubmitBulkText)
	api.Post("/questions/files", h.SubmitFiles)
	api.Post("/questions/:id/audit", h.RequestAudit)
	api.Post("/questions/:id/approve", h.ApproveQuestion)
	api.Post("/questions/:id/reject", h.RejectQuestion)

	api.Get("/paper", h.ActivePaper)
	api.Post("/paper/approve-all", h.ApproveAll)
	api.Post("/paper/archive", h.ArchiveAndReset)
	api.Delete("/paper", h.ClearSession)

	api.Get("/history", h.History)
	api.Post("/history/:id/load", h.LoadFromHistory)
	api.Delete("/history/:id", h.DeleteFromHistory)
}

// SubmitManual handles POST /api/questions
func (h *PaperHandler) SubmitManual(c *fiber.Ctx) error {
	var req dto.SubmitManualRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.workflow.SubmitManual(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SubmitBulkText handles POST /api/questions/bulk-text
func (h *PaperHandler) SubmitBulkText(c *fiber.Ctx) error {
	var req dto.BulkTextRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	report, err := h.workflow.SubmitBulkText(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// SubmitFiles handles POST /api/questions/files (multipart)
func (h *PaperHandler) SubmitFiles(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected a multipart form")
	}

	uploads := make([]dto.FileUpload, 0, len(form.File["files"]))
	for _, header := range form.File["files"] {
		f, err := header.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not open uploaded file "+header.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read uploaded file "+header.Filename)
		}

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
		}

		uploads = append(uploads, dto.FileUpload{
			Name:     header.Filename,
			MimeType: mimeType,
			Data:     data,
		})
	}

	subject := c.FormValue("subject")
	createdBy := c.FormValue("created_by")

	logger.Get().Info("processing uploaded files",
		zap.Int("count", len(uploads)))

	report, err := h.workflow.SubmitFiles(c.Context(), uploads, subject, createdBy)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// RequestAudit handles POST /api/questions/:id/audit
func (h *PaperHandler) RequestAudit(c *fiber.Ctx) error {
	resp, err := h.workflow.RequestAudit(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ApproveQuestion handles POST /api/questions/:id/approve
func (h *PaperHandler) ApproveQuestion(c *fiber.Ctx) error {
	resp, err := h.workflow.ApproveQuestion(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RejectQuestion handles POST /api/questions/:id/reject
func (h *PaperHandler) RejectQuestion(c *fiber.Ctx) error {
	resp, err := h.workflow.RejectQuestion(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ActivePaper handles GET /api/paper
func (h *PaperHandler) ActivePaper(c *fiber.Ctx) error {
	resp, err := h.workflow.ActivePaper(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ApproveAll handles POST /api/paper/approve-all
func (h *PaperHandler) ApproveAll(c *fiber.Ctx) error {
	resp, err := h.workflow.ApproveAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ArchiveAndReset handles POST /api/paper/archive
func (h *PaperHandler) ArchiveAndReset(c *fiber.Ctx) error {
	resp, err := h.workflow.ArchiveAndReset(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ClearSession handles DELETE /api/paper
func (h *PaperHandler) ClearSession(c *fiber.Ctx) error {
	if err := h.workflow.ClearSession(c.Context(), c.QueryBool("force")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History handles GET /api/history
func (h *PaperHandler) History(c *fiber.Ctx) error {
	summaries, err := h.workflow.History(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(summaries)
}

// LoadFromHistory handles POST /api/history/:id/load
func (h *PaperHandler) LoadFromHistory(c *fiber.Ctx) error {
	resp, err := h.workflow.LoadFromHistory(c.Context(), c.Params("id"), c.QueryBool("force"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteFromHistory handles DELETE /api/history/:id
func (h *PaperHandler) DeleteFromHistory(c *fiber.Ctx) error {
	if err := h.workflow.DeleteFromHistory(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
