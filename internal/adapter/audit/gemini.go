package audit

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"

	"paperaudit/internal/config"
	"paperaudit/internal/domain"
	"paperaudit/internal/logger"
)

// geminiAuditor implements domain.AuditClient against the Gemini API. The
// document path sends the raw bytes as an inline binary part, so PDFs and
// images are audited without local extraction.
type geminiAuditor struct {
	llm *googleai.GoogleAI
}

// NewGeminiAuditor creates a Gemini-backed audit client.
func NewGeminiAuditor(ctx context.Context, cfg config.AuditConfig) (domain.AuditClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model))
	if err != nil {
		return nil, err
	}
	return &geminiAuditor{llm: llm}, nil
}

func (g *geminiAuditor) AuditQuestion(ctx context.Context, content domain.QuestionContent) (*domain.AuditResult, error) {
	raw, err := g.generate(ctx, llms.TextPart(singleAuditPrompt(content)))
	if err != nil {
		return nil, err
	}
	return parseSingleResult(raw)
}

func (g *geminiAuditor) AuditRaw(ctx context.Context, text string) ([]domain.AuditResult, error) {
	raw, err := g.generate(ctx, llms.TextPart(rawAuditPrompt(text)))
	if err != nil {
		return nil, err
	}
	return parseResults(raw)
}

func (g *geminiAuditor) AuditDocument(ctx context.Context, data []byte, mimeType string) ([]domain.AuditResult, error) {
	raw, err := g.generate(ctx,
		llms.BinaryPart(mimeType, data),
		llms.TextPart(documentAuditPrompt))
	if err != nil {
		return nil, err
	}
	return parseResults(raw)
}

func (g *geminiAuditor) generate(ctx context.Context, parts ...llms.ContentPart) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: parts,
		},
	}

	resp, err := g.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(0),
		llms.WithJSONMode())
	if err != nil {
		logger.Get().Error("gemini audit call failed", zap.Error(err))
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from gemini")
	}
	return resp.Choices[0].Content, nil
}
