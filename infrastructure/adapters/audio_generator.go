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
	"net/url"
	"strconv"
	"strings"
)

const ElevenLabsProviderName = "elevenlabs"

type ElevenLabsRequest struct {
	Text          string        `json:"text"`
	ModelId       string        `json:"model_id"`
	LanguageCode  string        `json:"language_code,omitempty"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

type VoiceSettings struct {
	Stability       float64  `json:"stability"`
	SimilarityBoost float64  `json:"similarity_boost"`
	Style           float64  `json:"style"`
	UseSpeakerBoost bool     `json:"use_speaker_boost"`
	Speed           *float64 `json:"speed,omitempty"`
}

type audioGenerator struct {
	ContentFetcher
	logger           outbound.LoggerPort
	elevenLabsConfig *config.ElevenLabsConfig
	defaults         *config.ProviderDefaults
}

func NewAudioGenerator(contentFetcher ContentFetcher, elevenLabsConfig *config.ElevenLabsConfig,
	defaults *config.ProviderDefaults, logger outbound.LoggerPort) outbound.ProviderPort {
	return &audioGenerator{
		ContentFetcher:   contentFetcher,
		logger:           logger,
		elevenLabsConfig: elevenLabsConfig,
		defaults:         defaults,
	}
}

func (a *audioGenerator) Name() string {
	return ElevenLabsProviderName
}

func (a *audioGenerator) Kind() domain.GenerationKind {
	return domain.SpeechGenerationKind
}

func (a *audioGenerator) Generate(ctx context.Context, genReq domain.GenerationRequest) (*domain.Artifact, error) {
	if strings.TrimSpace(genReq.Payload) == "" {
		return nil, domain.NewProviderError(ElevenLabsProviderName, "empty_payload", "narration text is empty")
	}

	language := genReq.Option(domain.LanguageOption, "")
	voiceID := genReq.Option(domain.VoiceOption, a.defaults.Voice(language))
	modelID := genReq.Option(domain.ModelOption, a.defaults.SpeechModel(language))

	req, err := a.getRequest(ctx, genReq, voiceID, modelID, language)
	if err != nil {
		a.logger.ErrorWithFields(err, "Failed to construct the HTTP request for audio fetching", map[string]interface{}{
			"voice": voiceID,
			"index": genReq.Index,
		})
		return nil, domain.NewProviderError(ElevenLabsProviderName, "request_error", err.Error())
	}

	content, err := a.FetchContent(ElevenLabsProviderName, req)
	if err != nil {
		return nil, err
	}
	if len(content.Payload) == 0 {
		return nil, domain.NewProviderError(ElevenLabsProviderName, "missing_payload", "response has no audio stream")
	}
	if strings.HasPrefix(content.ContentType, "application/json") {
		return nil, domain.NewProviderError(ElevenLabsProviderName, "malformed_response", "expected audio, got JSON body")
	}

	return domain.NewInlineArtifact(content.Payload, "audio/mpeg").
		WithMeta("voice", voiceID).
		WithMeta("model", modelID), nil
}

func (a *audioGenerator) getRequest(ctx context.Context, genReq domain.GenerationRequest, voiceID string, modelID string,
	language string) (*http.Request, error) {
	reqBody := ElevenLabsRequest{
		Text:    genReq.Payload,
		ModelId: modelID,
		VoiceSettings: VoiceSettings{
			Stability:       a.elevenLabsConfig.Stability,
			SimilarityBoost: a.elevenLabsConfig.SimilarityBoost,
			Style:           a.elevenLabsConfig.Style,
			UseSpeakerBoost: a.elevenLabsConfig.SpeakerBoost,
		},
	}
	if strings.HasPrefix(modelID, "eleven_multilingual") || strings.HasPrefix(modelID, "eleven_turbo") {
		reqBody.LanguageCode = language
	}
	if raw, ok := genReq.Options[domain.SpeedOption]; ok {
		speed, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			reqBody.VoiceSettings.Speed = &speed
		}
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s", strings.TrimRight(a.elevenLabsConfig.ApiUrl, "/"), url.PathEscape(voiceID))
	if format, ok := genReq.Options[domain.OutputFormatOption]; ok {
		endpoint += "?output_format=" + url.QueryEscape(format)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", a.elevenLabsConfig.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
