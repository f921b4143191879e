package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
	"net/http"
	"strings"
)

const GeminiProviderName = "gemini"

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiTextGenerator struct {
	ContentFetcher
	logger       outbound.LoggerPort
	geminiConfig *config.GeminiConfig
}

func NewGeminiTextGenerator(contentFetcher ContentFetcher, geminiConfig *config.GeminiConfig, logger outbound.LoggerPort) outbound.ProviderPort {
	return &geminiTextGenerator{
		ContentFetcher: contentFetcher,
		logger:         logger,
		geminiConfig:   geminiConfig,
	}
}

func (g *geminiTextGenerator) Name() string {
	return GeminiProviderName
}

func (g *geminiTextGenerator) Kind() domain.GenerationKind {
	return domain.TextGenerationKind
}

func (g *geminiTextGenerator) Generate(ctx context.Context, genReq domain.GenerationRequest) (*domain.Artifact, error) {
	if strings.TrimSpace(genReq.Payload) == "" {
		return nil, domain.NewProviderError(GeminiProviderName, "empty_payload", "prompt is empty")
	}

	model := genReq.Option(domain.ModelOption, g.geminiConfig.Model)
	req, err := g.getRequest(ctx, genReq.Payload, model)
	if err != nil {
		g.logger.Error(err, "Failed to create the HTTP request")
		return nil, domain.NewProviderError(GeminiProviderName, "request_error", err.Error())
	}

	content, err := g.FetchContent(GeminiProviderName, req)
	if err != nil {
		return nil, err
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(content.Payload, &geminiRes); err != nil {
		g.logger.Error(err, "Failed to unmarshal the response")
		return nil, domain.NewProviderError(GeminiProviderName, "malformed_response", err.Error())
	}

	if reason := geminiRes.PromptFeedback.BlockReason; reason != "" {
		return nil, &domain.RejectionError{Provider: GeminiProviderName, Reason: reason}
	}
	if len(geminiRes.Candidates) == 0 {
		return nil, domain.NewProviderError(GeminiProviderName, "missing_payload", "response has no candidates")
	}
	candidate := geminiRes.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return nil, &domain.RejectionError{Provider: GeminiProviderName, Reason: candidate.FinishReason}
	}

	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		builder.WriteString(part.Text)
	}
	if builder.Len() == 0 {
		return nil, domain.NewProviderError(GeminiProviderName, "missing_payload", "candidate has no text")
	}

	return domain.NewInlineArtifact([]byte(builder.String()), "text/plain"), nil
}

func (g *geminiTextGenerator) getRequest(ctx context.Context, prompt string, model string) (*http.Request, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(g.geminiConfig.ApiUrl, "/"), model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.geminiConfig.ApiKey)

	return req, nil
}
