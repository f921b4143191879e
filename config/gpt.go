package config

import (
	"fmt"
	"os"
)

type GptConfig struct {
	ApiUrl string
	ApiKey string
	Model  string
}

func GetGptConfig() (*GptConfig, error) {
	apiKey := os.Getenv("GPT_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GPT_API_KEY must be set")
	}
	apiUrl := os.Getenv("GPT_API_URL")
	if apiUrl == "" {
		apiUrl = "https://api.openai.com/v1/chat/completions"
	}
	model := os.Getenv("GPT_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &GptConfig{
		ApiUrl: apiUrl,
		ApiKey: apiKey,
		Model:  model,
	}, nil
}
