package config

import (
	"fmt"
	"os"
)

type DaLLeConfig struct {
	ApiUrl string
	ApiKey string
	Size   string
	Model  string
}

func GetDaLLeConfig() (*DaLLeConfig, error) {
	apiKey := os.Getenv("DALLE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("DALLE_API_KEY must be set")
	}
	apiUrl := os.Getenv("DALLE_API_URL")
	if apiUrl == "" {
		apiUrl = "https://api.openai.com/v1/images/generations"
	}
	size := os.Getenv("DALLE_SIZE")
	if size == "" {
		size = "1024x1024"
	}
	model := os.Getenv("DALLE_MODEL")
	if model == "" {
		model = "dall-e-3"
	}

	return &DaLLeConfig{
		ApiUrl: apiUrl,
		ApiKey: apiKey,
		Size:   size,
		Model:  model,
	}, nil
}
