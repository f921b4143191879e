package config

import (
	"illustrated-story-api/domain"
)

const (
	FallbackImageModel  = "flux-schnell"
	FallbackVoiceID     = "EXAVITQu4vr4xnSDxMaL"
	FallbackSpeechModel = "eleven_multilingual_v2"
	FallbackLanguage    = "es"
)

// ProviderDefaults resolves the provider, model and voice used when a caller
// does not choose one. It is built once at startup and never modified.
type ProviderDefaults struct {
	providers    map[domain.GenerationKind]string
	voices       map[string]string
	imageModels  map[string]string
	speechModels map[string]string
}

func NewProviderDefaults(pipelineConfig *PipelineConfig) *ProviderDefaults {
	providers := map[domain.GenerationKind]string{
		domain.TextGenerationKind:   "gemini",
		domain.ImageGenerationKind:  "replicate",
		domain.SpeechGenerationKind: "elevenlabs",
	}
	if pipelineConfig != nil {
		if pipelineConfig.MockProviders {
			for kind := range providers {
				providers[kind] = "mock"
			}
		}
		for kind, name := range pipelineConfig.DefaultProviders {
			if name != "" {
				providers[kind] = name
			}
		}
	}

	return &ProviderDefaults{
		providers: providers,
		voices: map[string]string{
			"es": "EXAVITQu4vr4xnSDxMaL",
			"en": "21m00Tcm4TlvDq8ikWAM",
			"pt": "pNInz6obpgDQGcFmaJgB",
			"fr": "ThT5KcBeYPX3keUQqHPh",
			"de": "TxGEqnHWrfWFTfGW9XjX",
			"it": "XrExE9yKIg1WjnnlVkGX",
		},
		imageModels: map[string]string{
			"cinematic":    "flux-schnell",
			"photographic": "flux-dev",
			"illustration": "sdxl",
			"sketch":       "sdxl",
		},
		speechModels: map[string]string{
			"en": "eleven_monolingual_v1",
		},
	}
}

func (d *ProviderDefaults) Provider(kind domain.GenerationKind) string {
	if name, ok := d.providers[kind]; ok {
		return name
	}
	return "mock"
}

func (d *ProviderDefaults) Voice(language string) string {
	if voice, ok := d.voices[domain.NormalizeLanguage(language)]; ok {
		return voice
	}
	return FallbackVoiceID
}

func (d *ProviderDefaults) ImageModel(style string) string {
	if model, ok := d.imageModels[style]; ok {
		return model
	}
	return FallbackImageModel
}

func (d *ProviderDefaults) SpeechModel(language string) string {
	if model, ok := d.speechModels[domain.NormalizeLanguage(language)]; ok {
		return model
	}
	return FallbackSpeechModel
}
