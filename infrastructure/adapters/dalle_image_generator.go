package adapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
	"net/http"
	"strings"
)

const DalleProviderName = "dalle"

type DalleApiRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	Number         int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type DalleApiResponse struct {
	Data []struct {
		B64Json string `json:"b64_json"`
	} `json:"data"`
}

type dalleImageGenerator struct {
	ContentFetcher
	logger      outbound.LoggerPort
	dalleConfig *config.DaLLeConfig
}

func NewDalleImageGenerator(contentFetcher ContentFetcher, dalleConfig *config.DaLLeConfig, logger outbound.LoggerPort) outbound.ProviderPort {
	return &dalleImageGenerator{
		logger:         logger,
		ContentFetcher: contentFetcher,
		dalleConfig:    dalleConfig,
	}
}

func (i *dalleImageGenerator) Name() string {
	return DalleProviderName
}

func (i *dalleImageGenerator) Kind() domain.GenerationKind {
	return domain.ImageGenerationKind
}

func (i *dalleImageGenerator) Generate(ctx context.Context, genReq domain.GenerationRequest) (*domain.Artifact, error) {
	if strings.TrimSpace(genReq.Payload) == "" {
		return nil, domain.NewProviderError(DalleProviderName, "empty_payload", "image prompt is empty")
	}

	model := genReq.Option(domain.ModelOption, i.dalleConfig.Model)
	if !strings.HasPrefix(model, "dall-e") {
		model = i.dalleConfig.Model
	}
	prompt := EnhanceImagePrompt(genReq.Payload, genReq.Option(domain.StyleOption, "cinematic"))

	req, err := i.getRequest(ctx, prompt, model)
	if err != nil {
		i.logger.Error(err, "Failed to create the HTTP request")
		return nil, domain.NewProviderError(DalleProviderName, "request_error", err.Error())
	}

	content, err := i.FetchContent(DalleProviderName, req)
	if err != nil {
		var providerErr *domain.ProviderError
		if errors.As(err, &providerErr) && strings.Contains(providerErr.Message, "content_policy_violation") {
			return nil, &domain.RejectionError{Provider: DalleProviderName, Reason: "content_policy_violation"}
		}
		return nil, err
	}

	var dalleRes DalleApiResponse
	if err := json.Unmarshal(content.Payload, &dalleRes); err != nil {
		i.logger.Error(err, "Failed to unmarshal the response")
		return nil, domain.NewProviderError(DalleProviderName, "malformed_response", err.Error())
	}
	if len(dalleRes.Data) == 0 || dalleRes.Data[0].B64Json == "" {
		return nil, domain.NewProviderError(DalleProviderName, "missing_payload", "response has no inline image data")
	}

	decodedImage, err := base64.StdEncoding.DecodeString(dalleRes.Data[0].B64Json)
	if err != nil {
		i.logger.Error(err, "Failed to decode the image")
		return nil, domain.NewProviderError(DalleProviderName, "malformed_response", err.Error())
	}

	return domain.NewInlineArtifact(decodedImage, "image/png").
		WithMeta("model", model).
		WithMeta("enhancedPrompt", prompt), nil
}

func (i *dalleImageGenerator) getRequest(ctx context.Context, prompt string, model string) (*http.Request, error) {
	reqBody := DalleApiRequest{
		Model:          model,
		Prompt:         prompt,
		Size:           i.dalleConfig.Size,
		Number:         1,
		ResponseFormat: "b64_json",
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.dalleConfig.ApiUrl, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+i.dalleConfig.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
