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

const ReplicateProviderName = "replicate"

type replicateModel struct {
	Model   string
	Version string
	Params  map[string]interface{}
}

var replicateModels = map[string]replicateModel{
	"flux-schnell": {
		Model: "black-forest-labs/flux-schnell",
		Params: map[string]interface{}{
			"width":                  1024,
			"height":                 768,
			"num_outputs":            1,
			"disable_safety_checker": false,
		},
	},
	"flux-dev": {
		Model: "black-forest-labs/flux-dev",
		Params: map[string]interface{}{
			"width":               1024,
			"height":              768,
			"num_outputs":         1,
			"guidance_scale":      3.5,
			"num_inference_steps": 28,
		},
	},
	"sdxl": {
		Model:   "stability-ai/sdxl",
		Version: "39ed52f2a78e934b3ba6e2a89f5b1c712de7dfea535525255b1aa35c5565e08b",
		Params: map[string]interface{}{
			"width":               1024,
			"height":              768,
			"num_outputs":         1,
			"scheduler":           "DPMSolverMultistep",
			"num_inference_steps": 25,
			"guidance_scale":      7.5,
		},
	},
}

var styleSuffixes = map[string]string{
	"cinematic":    "cinematic composition, dramatic lighting, high quality, detailed, professional photography, 16:9 aspect ratio, vivid colors, sharp focus",
	"photographic": "photorealistic, natural lighting, 35mm photograph, high detail, sharp focus",
	"illustration": "digital storybook illustration, soft shading, vibrant colors, detailed",
	"sketch":       "pencil sketch, detailed linework, monochrome, textured paper",
}

type replicatePredictionRequest struct {
	Version string                 `json:"version,omitempty"`
	Input   map[string]interface{} `json:"input"`
}

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  interface{}     `json:"error"`
}

type replicateImageGenerator struct {
	ContentFetcher
	logger          outbound.LoggerPort
	replicateConfig *config.ReplicateConfig
	defaults        *config.ProviderDefaults
}

func NewReplicateImageGenerator(contentFetcher ContentFetcher, replicateConfig *config.ReplicateConfig,
	defaults *config.ProviderDefaults, logger outbound.LoggerPort) outbound.ProviderPort {
	return &replicateImageGenerator{
		ContentFetcher:  contentFetcher,
		logger:          logger,
		replicateConfig: replicateConfig,
		defaults:        defaults,
	}
}

func (r *replicateImageGenerator) Name() string {
	return ReplicateProviderName
}

func (r *replicateImageGenerator) Kind() domain.GenerationKind {
	return domain.ImageGenerationKind
}

func (r *replicateImageGenerator) Generate(ctx context.Context, genReq domain.GenerationRequest) (*domain.Artifact, error) {
	if strings.TrimSpace(genReq.Payload) == "" {
		return nil, domain.NewProviderError(ReplicateProviderName, "empty_payload", "image prompt is empty")
	}

	style := genReq.Option(domain.StyleOption, "cinematic")
	modelKey := genReq.Option(domain.ModelOption, r.defaults.ImageModel(style))
	selected, ok := replicateModels[modelKey]
	if !ok {
		modelKey = config.FallbackImageModel
		selected = replicateModels[modelKey]
	}
	prompt := EnhanceImagePrompt(genReq.Payload, style)

	req, err := r.getRequest(ctx, selected, prompt)
	if err != nil {
		r.logger.Error(err, "Failed to create the HTTP request")
		return nil, domain.NewProviderError(ReplicateProviderName, "request_error", err.Error())
	}

	content, err := r.FetchContent(ReplicateProviderName, req)
	if err != nil {
		return nil, err
	}

	var prediction replicatePrediction
	if err := json.Unmarshal(content.Payload, &prediction); err != nil {
		return nil, domain.NewProviderError(ReplicateProviderName, "malformed_response", err.Error())
	}

	switch prediction.Status {
	case "succeeded":
	case "failed", "canceled":
		reason := fmt.Sprint(prediction.Error)
		if strings.Contains(strings.ToUpper(reason), "NSFW") {
			return nil, &domain.RejectionError{Provider: ReplicateProviderName, Reason: reason}
		}
		return nil, domain.NewProviderError(ReplicateProviderName, "prediction_"+prediction.Status, reason)
	default:
		return nil, domain.NewProviderError(ReplicateProviderName, "prediction_pending",
			fmt.Sprintf("prediction %s did not finish within the wait window (status %q)", prediction.ID, prediction.Status))
	}

	imageURL, err := firstOutputURL(prediction.Output)
	if err != nil {
		return nil, domain.NewProviderError(ReplicateProviderName, "missing_payload", err.Error())
	}

	artifact := r.inlineImage(ctx, imageURL).
		WithMeta("model", selected.Model).
		WithMeta("enhancedPrompt", prompt).
		WithMeta("originalUrl", imageURL)
	return artifact, nil
}

// inlineImage downloads the generated image so the caller gets a self-contained
// reference. The remote URL is kept when the download fails.
func (r *replicateImageGenerator) inlineImage(ctx context.Context, imageURL string) *domain.Artifact {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return domain.NewRemoteArtifact(imageURL).WithMeta("note", "using original URL")
	}
	content, err := r.FetchContent(ReplicateProviderName, req)
	if err != nil {
		r.logger.WarnWithFields("Could not inline generated image, using original URL", map[string]interface{}{
			"url":   imageURL,
			"error": err.Error(),
		})
		return domain.NewRemoteArtifact(imageURL).WithMeta("note", "using original URL")
	}
	mimeType := content.ContentType
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/png"
	}
	return domain.NewInlineArtifact(content.Payload, mimeType)
}

func (r *replicateImageGenerator) getRequest(ctx context.Context, selected replicateModel, prompt string) (*http.Request, error) {
	input := make(map[string]interface{}, len(selected.Params)+1)
	for k, v := range selected.Params {
		input[k] = v
	}
	input["prompt"] = prompt

	base := strings.TrimRight(r.replicateConfig.ApiUrl, "/")
	url := fmt.Sprintf("%s/models/%s/predictions", base, selected.Model)
	reqBody := replicatePredictionRequest{Input: input}
	if selected.Version != "" {
		url = base + "/predictions"
		reqBody.Version = selected.Version
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+r.replicateConfig.ApiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	return req, nil
}

// EnhanceImagePrompt appends the style's rendering hints to a scene prompt.
func EnhanceImagePrompt(prompt string, style string) string {
	suffix, ok := styleSuffixes[style]
	if !ok {
		suffix = styleSuffixes["cinematic"]
	}
	return fmt.Sprintf("%s, %s", strings.TrimSpace(prompt), suffix)
}

func firstOutputURL(output json.RawMessage) (string, error) {
	if len(output) == 0 || string(output) == "null" {
		return "", fmt.Errorf("prediction has no output")
	}
	var single string
	if err := json.Unmarshal(output, &single); err == nil && single != "" {
		return single, nil
	}
	var many []string
	if err := json.Unmarshal(output, &many); err == nil && len(many) > 0 && many[0] != "" {
		return many[0], nil
	}
	return "", fmt.Errorf("unexpected prediction output format")
}
