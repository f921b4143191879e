package domain

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	ProviderOption     = "provider"
	ModelOption        = "model"
	StyleOption        = "style"
	LanguageOption     = "language"
	VoiceOption        = "voice"
	SpeedOption        = "speed"
	OutputFormatOption = "outputFormat"
)

type optionValidator func(value string) bool

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.:/-]{1,128}$`)

func oneOf(values ...string) optionValidator {
	return func(value string) bool {
		for _, v := range values {
			if v == value {
				return true
			}
		}
		return false
	}
}

func identifier(value string) bool {
	return identifierPattern.MatchString(value)
}

func speedRange(value string) bool {
	speed, err := strconv.ParseFloat(value, 64)
	return err == nil && speed >= 0.7 && speed <= 1.2
}

var (
	supportedLanguages = oneOf("es", "en", "pt", "fr", "de", "it")

	kindOptions = map[GenerationKind]map[string]optionValidator{
		TextGenerationKind: {
			ProviderOption: identifier,
			ModelOption:    identifier,
			LanguageOption: supportedLanguages,
		},
		ImageGenerationKind: {
			ProviderOption: identifier,
			ModelOption:    oneOf("flux-schnell", "flux-dev", "sdxl", "dall-e-2", "dall-e-3"),
			StyleOption:    oneOf("cinematic", "photographic", "illustration", "sketch"),
		},
		SpeechGenerationKind: {
			ProviderOption: identifier,
			VoiceOption:    identifier,
			ModelOption:    identifier,
			LanguageOption: supportedLanguages,
			SpeedOption:    speedRange,
			OutputFormatOption: oneOf("mp3_22050_32", "mp3_44100_64", "mp3_44100_96",
				"mp3_44100_128", "mp3_44100_192"),
		},
	}
)

// SanitizeOptions keeps only the options known for kind whose values are
// acceptable. Unknown keys and invalid values are dropped.
func SanitizeOptions(kind GenerationKind, options map[string]string) map[string]string {
	sanitized := make(map[string]string)
	allowed := kindOptions[kind]
	for key, value := range options {
		validate, ok := allowed[key]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if key == LanguageOption {
			value = NormalizeLanguage(value)
		}
		if value == "" || !validate(value) {
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

// NormalizeLanguage reduces tags like "es-MX" or "EN" to their lowercase
// primary subtag.
func NormalizeLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if i := strings.IndexAny(language, "-_"); i > 0 {
		language = language[:i]
	}
	return language
}
