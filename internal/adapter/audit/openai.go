package audit

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"paperaudit/internal/config"
	"paperaudit/internal/domain"
	"paperaudit/internal/logger"
)

// openaiAuditor implements domain.AuditClient against the OpenAI chat API.
// Images travel as data-URL vision parts; PDFs have no inline path on this
// backend and are rejected, so callers should route them through extraction
// or the Gemini provider.
type openaiAuditor struct {
	client *openai.Client
	model  string
}

// NewOpenAIAuditor creates an OpenAI-backed audit client.
func NewOpenAIAuditor(cfg config.AuditConfig) (domain.AuditClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	return &openaiAuditor{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
	}, nil
}

func (o *openaiAuditor) AuditQuestion(ctx context.Context, content domain.QuestionContent) (*domain.AuditResult, error) {
	raw, err := o.chat(ctx, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: singleAuditPrompt(content),
	})
	if err != nil {
		return nil, err
	}
	return parseSingleResult(raw)
}

func (o *openaiAuditor) AuditRaw(ctx context.Context, text string) ([]domain.AuditResult, error) {
	raw, err := o.chat(ctx, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: rawAuditPrompt(text),
	})
	if err != nil {
		return nil, err
	}
	return parseResults(raw)
}

func (o *openaiAuditor) AuditDocument(ctx context.Context, data []byte, mimeType string) ([]domain.AuditResult, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("openai auditor cannot ingest %s documents inline", mimeType)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		mimeType, base64.StdEncoding.EncodeToString(data))
	raw, err := o.chat(ctx, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
			},
			{
				Type: openai.ChatMessagePartTypeText,
				Text: documentAuditPrompt,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return parseResults(raw)
}

func (o *openaiAuditor) chat(ctx context.Context, user openai.ChatCompletionMessage) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			user,
		},
		// The client omits a zero temperature from the request body, so the
		// smallest nonzero value is the closest to deterministic.
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		logger.Get().Error("openai audit call failed", zap.Error(err))
		return "", fmt.Errorf("calling OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
