package config

import (
	"fmt"
	"os"
)

type GeminiConfig struct {
	ApiUrl string
	ApiKey string
	Model  string
}

func GetGeminiConfig() (*GeminiConfig, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set")
	}
	apiUrl := os.Getenv("GEMINI_API_URL")
	if apiUrl == "" {
		apiUrl = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiConfig{
		ApiUrl: apiUrl,
		ApiKey: apiKey,
		Model:  model,
	}, nil
}
