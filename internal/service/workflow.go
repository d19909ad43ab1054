package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"paperaudit/internal/config"
	"paperaudit/internal/domain"
	"paperaudit/internal/dto"
	"paperaudit/internal/logger"
	"paperaudit/internal/util"
	"paperaudit/internal/validation"
)

// WorkflowService is the application-facing surface of the QC workflow. The
// HTTP handlers and the CLI commands map 1:1 onto these operations.
type WorkflowService interface {
	// Restore reloads the unarchived working paper, if any, after a restart.
	Restore(ctx context.Context) error

	SubmitManual(ctx context.Context, req *dto.SubmitManualRequest) (*dto.QuestionResponse, error)
	SubmitBulkText(ctx context.Context, req *dto.BulkTextRequest) (*dto.BulkReport, error)
	SubmitFiles(ctx context.Context, files []dto.FileUpload, subject, createdBy string) (*dto.BulkReport, error)

	RequestAudit(ctx context.Context, questionID string) (*dto.QuestionResponse, error)
	ApproveQuestion(ctx context.Context, questionID string) (*dto.QuestionResponse, error)
	RejectQuestion(ctx context.Context, questionID string) (*dto.QuestionResponse, error)
	ApproveAll(ctx context.Context) (*dto.PaperResponse, error)

	ArchiveAndReset(ctx context.Context) (*dto.PaperResponse, error)
	LoadFromHistory(ctx context.Context, paperID string, force bool) (*dto.PaperResponse, error)
	DeleteFromHistory(ctx context.Context, paperID string) error
	ClearSession(ctx context.Context, force bool) error
	History(ctx context.Context) ([]dto.PaperSummary, error)
	ActivePaper(ctx context.Context) (*dto.PaperResponse, error)
}

type workflowService struct {
	store      domain.PaperStore
	auditor    domain.AuditClient
	extractor  domain.ExtractionClient
	auditCache *AuditCacheService
	validator  *validation.Validator
	cfg        *config.Config

	// mu guards active and inflight. It is released around external audit
	// calls and re-acquired before the result is folded in, so one slow
	// model call does not block the whole session.
	mu       sync.Mutex
	active   *domain.Paper
	inflight map[string]struct{}
}

// NewWorkflowService wires the controller. auditCache may be nil when the
// redis cache is disabled; every cache interaction degrades to a plain
// model call.
func NewWorkflowService(
	store domain.PaperStore,
	auditor domain.AuditClient,
	extractor domain.ExtractionClient,
	auditCache *AuditCacheService,
	validator *validation.Validator,
	cfg *config.Config,
) WorkflowService {
	return &workflowService{
		store:      store,
		auditor:    auditor,
		extractor:  extractor,
		auditCache: auditCache,
		validator:  validator,
		cfg:        cfg,
		inflight:   make(map[string]struct{}),
	}
}

// Restore reloads the unarchived working paper from the store, if one
// exists, so a restart resumes the interrupted session.
func (s *workflowService) Restore(ctx context.Context) error {
	papers, err := s.store.List(ctx)
	if err != nil {
		return domain.NewPersistenceError("failed to restore working session", err)
	}
	for i := range papers {
		if !papers[i].Archived() {
			restored := papers[i].Clone()
			s.mu.Lock()
			s.active = &restored
			s.mu.Unlock()
			logger.Get().Info("restored working session",
				zap.String("paper_id", restored.ID),
				zap.Int("questions", len(restored.Questions)))
			return nil
		}
	}
	return nil
}

func (s *workflowService) SubmitManual(ctx context.Context, req *dto.SubmitManualRequest) (*dto.QuestionResponse, error) {
	if errs := s.validator.ValidateManualSubmission(req); len(errs) > 0 {
		return nil, errs
	}

	content := domain.QuestionContent{
		Text:     req.Question,
		Answer:   req.CorrectAnswer,
		Solution: req.Solution,
	}
	if len(req.Options) > 0 {
		content.Choices = &domain.ChoiceSet{
			Options:      append([]string(nil), req.Options...),
			CorrectIndex: *req.CorrectIndex,
		}
	}

	question, err := domain.NewQuestion(util.NewULID(), content, req.Topic)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.appendAndPersist(ctx, []domain.Question{question}, req.Subject, req.CreatedBy); err != nil {
		return nil, err
	}

	resp := dto.FromQuestion(question)
	return &resp, nil
}

func (s *workflowService) SubmitBulkText(ctx context.Context, req *dto.BulkTextRequest) (*dto.BulkReport, error) {
	if errs := s.validator.ValidateBulkText(req.Text); len(errs) > 0 {
		return nil, errs
	}

	auditCtx, cancel := context.WithTimeout(ctx, s.cfg.Audit.Timeout)
	defer cancel()
	results, err := s.auditor.AuditRaw(auditCtx, req.Text)
	if err != nil {
		return nil, domain.NewAuditFailedError(err)
	}

	questions, failures := s.fold(results, "pasted text", "")

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(questions) > 0 {
		if err := s.appendAndPersist(ctx, questions, req.Subject, req.CreatedBy); err != nil {
			return nil, err
		}
	}
	return s.report(questions, failures), nil
}

func (s *workflowService) SubmitFiles(ctx context.Context, files []dto.FileUpload, subject, createdBy string) (*dto.BulkReport, error) {
	if len(files) == 0 {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("files")}
	}

	type fileOutcome struct {
		results []domain.AuditResult
		failure *dto.BulkFailure
	}
	outcomes := make([]fileOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	limit := s.cfg.Audit.MaxConcurrentFiles
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range files {
		i := i
		file := files[i]
		g.Go(func() error {
			results, err := s.auditFile(gctx, file)
			if err != nil {
				logger.Get().Warn("file ingestion failed",
					zap.String("file", file.Name), zap.Error(err))
				outcomes[i] = fileOutcome{failure: &dto.BulkFailure{
					Item:   file.Name,
					Reason: err.Error(),
				}}
				return nil
			}
			outcomes[i] = fileOutcome{results: results}
			return nil
		})
	}
	// Goroutines report failures through outcomes, never as errors, so one
	// bad file cannot cancel its siblings.
	_ = g.Wait()

	var questions []domain.Question
	var failures []dto.BulkFailure
	for i, outcome := range outcomes {
		if outcome.failure != nil {
			failures = append(failures, *outcome.failure)
			continue
		}
		qs, fs := s.fold(outcome.results, files[i].Name, files[i].Name)
		questions = append(questions, qs...)
		failures = append(failures, fs...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(questions) > 0 {
		if err := s.appendAndPersist(ctx, questions, subject, createdBy); err != nil {
			return nil, err
		}
	}
	return s.report(questions, failures), nil
}

func (s *workflowService) auditFile(ctx context.Context, file dto.FileUpload) ([]domain.AuditResult, error) {
	auditCtx, cancel := context.WithTimeout(ctx, s.cfg.Audit.Timeout)
	defer cancel()

	if s.extractor.Supports(file.MimeType) {
		text, err := s.extractor.ExtractText(file.Data, file.MimeType)
		if err != nil {
			return nil, domain.NewExtractionError(file.Name, err)
		}
		results, err := s.auditor.AuditRaw(auditCtx, text)
		if err != nil {
			return nil, domain.NewAuditFailedError(err)
		}
		return results, nil
	}

	results, err := s.auditor.AuditDocument(auditCtx, file.Data, file.MimeType)
	if err != nil {
		return nil, domain.NewAuditFailedError(err)
	}
	return results, nil
}

// fold maps audit results onto freshly created questions, each already
// carrying its audited revision. One malformed result is reported and
// skipped without touching its siblings.
func (s *workflowService) fold(results []domain.AuditResult, item, topicPrefix string) ([]domain.Question, []dto.BulkFailure) {
	var questions []domain.Question
	var failures []dto.BulkFailure
	for i, result := range results {
		label := fmt.Sprintf("%s (question %d)", item, i+1)

		question, err := domain.NewQuestion(util.NewULID(), result.Original, result.Topic)
		if err != nil {
			failures = append(failures, dto.BulkFailure{Item: label, Reason: err.Error()})
			continue
		}
		question, err = domain.ApplyAuditResult(question, result)
		if err != nil {
			failures = append(failures, dto.BulkFailure{Item: label, Reason: err.Error()})
			continue
		}
		if topicPrefix != "" {
			question.Topic = fmt.Sprintf("[%s] %s", topicPrefix, question.Topic)
		}
		questions = append(questions, question)
	}
	return questions, failures
}

func (s *workflowService) report(questions []domain.Question, failures []dto.BulkFailure) *dto.BulkReport {
	report := &dto.BulkReport{
		Ingested: len(questions),
		Failures: failures,
	}
	for _, q := range questions {
		report.Questions = append(report.Questions, dto.FromQuestion(q))
	}
	return report
}

// appendAndPersist clones the active paper (creating one when the session is
// empty), appends the questions, derives the paper status and persists the
// clone. The in-memory paper is swapped only after the save succeeds.
// Callers must hold s.mu.
func (s *workflowService) appendAndPersist(ctx context.Context, questions []domain.Question, subject, createdBy string) error {
	var next domain.Paper
	if s.active != nil {
		next = s.active.Clone()
	} else {
		next = domain.Paper{
			ID:        util.NewULID(),
			Title:     "Working Paper",
			Subject:   subject,
			CreatedBy: createdBy,
			CreatedAt: time.Now(),
		}
	}
	next.Questions = append(next.Questions, questions...)
	next.Status = domain.DerivePaperStatus(next.Questions)

	if err := s.store.Save(ctx, &next); err != nil {
		return domain.NewPersistenceError("failed to save working paper", err)
	}
	s.active = &next
	return nil
}

func (s *workflowService) RequestAudit(ctx context.Context, questionID string) (*dto.QuestionResponse, error) {
	s.mu.Lock()
	question := s.findQuestion(questionID)
	if question == nil {
		s.mu.Unlock()
		return nil, domain.NewQuestionNotFoundError(questionID)
	}
	if question.Locked() {
		s.mu.Unlock()
		return nil, domain.NewValidationError(
			fmt.Sprintf("question %s is approved and locked", questionID))
	}
	if _, pending := s.inflight[questionID]; pending {
		s.mu.Unlock()
		return nil, domain.NewAuditInFlightError(questionID)
	}
	s.inflight[questionID] = struct{}{}
	content := question.Original.Clone()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, questionID)
		s.mu.Unlock()
	}()

	result, err := s.obtainAuditResult(ctx, content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.findQuestion(questionID)
	if current == nil {
		logger.Get().Warn("discarding audit result for vanished question",
			zap.String("question_id", questionID))
		return nil, domain.NewQuestionNotFoundError(questionID)
	}

	audited, err := domain.ApplyAuditResult(*current, *result)
	if err != nil {
		return nil, err
	}
	if err := s.replaceAndPersist(ctx, audited); err != nil {
		return nil, err
	}

	resp := dto.FromQuestion(audited)
	return &resp, nil
}

// obtainAuditResult consults the cache before calling the model. Cache
// failures are logged and ignored: the cache is an optimization, never a
// gate.
func (s *workflowService) obtainAuditResult(ctx context.Context, content domain.QuestionContent) (*domain.AuditResult, error) {
	if s.auditCache != nil {
		cached, err := s.auditCache.Get(ctx, content)
		if err != nil {
			logger.Get().Warn("audit cache lookup failed", zap.Error(err))
		} else if cached != nil {
			logger.Get().Debug("audit cache hit")
			return cached, nil
		}
	}

	auditCtx, cancel := context.WithTimeout(ctx, s.cfg.Audit.Timeout)
	defer cancel()
	result, err := s.auditor.AuditQuestion(auditCtx, content)
	if err != nil {
		return nil, domain.NewAuditFailedError(err)
	}

	if s.auditCache != nil {
		if err := s.auditCache.Put(ctx, content, result); err != nil {
			logger.Get().Warn("audit cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

func (s *workflowService) ApproveQuestion(ctx context.Context, questionID string) (*dto.QuestionResponse, error) {
	return s.decide(ctx, questionID, domain.Approve)
}

func (s *workflowService) RejectQuestion(ctx context.Context, questionID string) (*dto.QuestionResponse, error) {
	return s.decide(ctx, questionID, domain.Reject)
}

func (s *workflowService) decide(ctx context.Context, questionID string, transition func(domain.Question) (domain.Question, error)) (*dto.QuestionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	question := s.findQuestion(questionID)
	if question == nil {
		return nil, domain.NewQuestionNotFoundError(questionID)
	}
	if _, pending := s.inflight[questionID]; pending {
		return nil, domain.NewAuditInFlightError(questionID)
	}

	decided, err := transition(*question)
	if err != nil {
		return nil, err
	}
	if err := s.replaceAndPersist(ctx, decided); err != nil {
		return nil, err
	}

	resp := dto.FromQuestion(decided)
	return &resp, nil
}

func (s *workflowService) ApproveAll(ctx context.Context) (*dto.PaperResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || len(s.active.Questions) == 0 {
		return nil, domain.NewValidationError("no questions in the active session")
	}
	if len(s.inflight) > 0 {
		return nil, domain.NewValidationError("audits are still in flight")
	}

	next := s.active.Clone()
	changed := false
	for i, q := range next.Questions {
		if q.Locked() || q.Audited == nil {
			continue
		}
		approved, err := domain.Approve(q)
		if err != nil {
			return nil, err
		}
		next.Questions[i] = approved
		changed = true
	}
	if !changed {
		resp := dto.FromPaper(*s.active)
		return &resp, nil
	}
	next.Status = domain.DerivePaperStatus(next.Questions)

	if err := s.store.Save(ctx, &next); err != nil {
		return nil, domain.NewPersistenceError("failed to save approved paper", err)
	}
	s.active = &next

	resp := dto.FromPaper(next)
	return &resp, nil
}

func (s *workflowService) ArchiveAndReset(ctx context.Context) (*dto.PaperResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil, domain.NewValidationError("cannot archive an empty session")
	}

	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, _, evicted, err := domain.ArchivePaper(
		util.NewULID(), *s.active, history, s.cfg.Archive.Retention)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, &snapshot); err != nil {
		return nil, domain.NewPersistenceError("failed to save archive snapshot", err)
	}
	for _, old := range evicted {
		if err := s.store.Delete(ctx, old.ID); err != nil {
			logger.Get().Warn("failed to evict archive entry",
				zap.String("paper_id", old.ID), zap.Error(err))
		}
	}
	if err := s.store.Delete(ctx, s.active.ID); err != nil {
		logger.Get().Warn("failed to delete working paper record",
			zap.String("paper_id", s.active.ID), zap.Error(err))
	}
	s.active = nil

	resp := dto.FromPaper(snapshot)
	return &resp, nil
}

func (s *workflowService) LoadFromHistory(ctx context.Context, paperID string, force bool) (*dto.PaperResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardDiscard(force); err != nil {
		return nil, err
	}

	stored, err := s.store.GetByID(ctx, paperID)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to load paper", err)
	}
	if stored == nil || !stored.Archived() {
		return nil, domain.NewPaperNotFoundError(paperID)
	}

	// The loaded session becomes a fresh working paper; the archive entry
	// stays untouched.
	next := stored.Clone()
	next.ID = util.NewULID()
	next.ArchivedAt = nil
	next.CreatedAt = time.Now()
	next.Status = domain.DerivePaperStatus(next.Questions)

	if err := s.store.Save(ctx, &next); err != nil {
		return nil, domain.NewPersistenceError("failed to save working paper", err)
	}
	if err := s.discardActiveRecord(ctx); err != nil {
		logger.Get().Warn("failed to delete discarded working paper", zap.Error(err))
	}
	s.active = &next

	resp := dto.FromPaper(next)
	return &resp, nil
}

func (s *workflowService) DeleteFromHistory(ctx context.Context, paperID string) error {
	stored, err := s.store.GetByID(ctx, paperID)
	if err != nil {
		return domain.NewPersistenceError("failed to load paper", err)
	}
	if stored == nil || !stored.Archived() {
		return domain.NewPaperNotFoundError(paperID)
	}
	if err := s.store.Delete(ctx, paperID); err != nil {
		return domain.NewPersistenceError("failed to delete archive entry", err)
	}
	return nil
}

func (s *workflowService) ClearSession(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardDiscard(force); err != nil {
		return err
	}
	if err := s.discardActiveRecord(ctx); err != nil {
		return domain.NewPersistenceError("failed to delete working paper record", err)
	}
	s.active = nil
	return nil
}

func (s *workflowService) History(ctx context.Context) ([]dto.PaperSummary, error) {
	papers, err := s.store.List(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to list archive", err)
	}
	summaries := make([]dto.PaperSummary, 0, len(papers))
	for _, p := range papers {
		if p.Archived() {
			summaries = append(summaries, dto.SummarizePaper(p))
		}
	}
	return summaries, nil
}

func (s *workflowService) ActivePaper(_ context.Context) (*dto.PaperResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		resp := dto.PaperResponse{
			Status:    string(domain.PaperDraft),
			Questions: []dto.QuestionResponse{},
		}
		return &resp, nil
	}
	resp := dto.FromPaper(*s.active)
	return &resp, nil
}

// guardDiscard refuses to throw away an unarchived session unless the caller
// explicitly confirmed. Callers must hold s.mu.
func (s *workflowService) guardDiscard(force bool) error {
	if force || s.active == nil || len(s.active.Questions) == 0 {
		return nil
	}
	return domain.NewConfirmationRequiredError(
		"the active session has unarchived questions; pass force to discard them")
}

// discardActiveRecord deletes the working paper's stored record, if any.
// Callers must hold s.mu.
func (s *workflowService) discardActiveRecord(ctx context.Context) error {
	if s.active == nil {
		return nil
	}
	return s.store.Delete(ctx, s.active.ID)
}

// findQuestion returns a pointer into the active paper's question slice, or
// nil. Callers must hold s.mu and must not retain the pointer across an
// unlock.
func (s *workflowService) findQuestion(id string) *domain.Question {
	if s.active == nil {
		return nil
	}
	for i := range s.active.Questions {
		if s.active.Questions[i].ID == id {
			return &s.active.Questions[i]
		}
	}
	return nil
}

// replaceAndPersist swaps one question into a clone of the active paper,
// rederives the paper status and persists. The in-memory paper changes only
// after the save succeeds. Callers must hold s.mu.
func (s *workflowService) replaceAndPersist(ctx context.Context, question domain.Question) error {
	next := s.active.Clone()
	replaced := false
	for i := range next.Questions {
		if next.Questions[i].ID == question.ID {
			next.Questions[i] = question
			replaced = true
			break
		}
	}
	if !replaced {
		return domain.NewQuestionNotFoundError(question.ID)
	}
	next.Status = domain.DerivePaperStatus(next.Questions)

	if err := s.store.Save(ctx, &next); err != nil {
		return domain.NewPersistenceError("failed to save working paper", err)
	}
	s.active = &next
	return nil
}

func (s *workflowService) loadHistory(ctx context.Context) ([]domain.Paper, error) {
	papers, err := s.store.List(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to list archive", err)
	}
	history := make([]domain.Paper, 0, len(papers))
	for _, p := range papers {
		if p.Archived() {
			history = append(history, p)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})
	return history, nil
}
