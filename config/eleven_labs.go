package config

import (
	"fmt"
	"os"
	"strconv"
)

type ElevenLabsConfig struct {
	ApiUrl          string
	ApiKey          string
	Stability       float64
	SimilarityBoost float64
	Style           float64
	SpeakerBoost    bool
}

func GetElevenLabsConfig() (*ElevenLabsConfig, error) {
	apiKey := os.Getenv("ELEVEN_LABS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ELEVEN_LABS_API_KEY must be set")
	}
	apiUrl := os.Getenv("ELEVEN_LABS_API_URL")
	if apiUrl == "" {
		apiUrl = "https://api.elevenlabs.io/v1/text-to-speech"
	}
	stability, err := floatEnv("ELEVEN_LABS_STABILITY", 0.5)
	if err != nil {
		return nil, err
	}
	similarityBoost, err := floatEnv("ELEVEN_LABS_SIMILARITY_BOOST", 0.8)
	if err != nil {
		return nil, err
	}
	style, err := floatEnv("ELEVEN_LABS_STYLE", 0.5)
	if err != nil {
		return nil, err
	}
	speakerBoost, err := boolEnv("ELEVEN_LABS_SPEAKER_BOOST", true)
	if err != nil {
		return nil, err
	}

	return &ElevenLabsConfig{
		ApiUrl:          apiUrl,
		ApiKey:          apiKey,
		Stability:       stability,
		SimilarityBoost: similarityBoost,
		Style:           style,
		SpeakerBoost:    speakerBoost,
	}, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return val, nil
}
