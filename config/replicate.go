package config

import (
	"fmt"
	"os"
)

type ReplicateConfig struct {
	ApiUrl   string
	ApiToken string
}

func GetReplicateConfig() (*ReplicateConfig, error) {
	apiToken := os.Getenv("REPLICATE_API_TOKEN")
	if apiToken == "" {
		return nil, fmt.Errorf("REPLICATE_API_TOKEN must be set")
	}
	apiUrl := os.Getenv("REPLICATE_API_URL")
	if apiUrl == "" {
		apiUrl = "https://api.replicate.com/v1"
	}
	return &ReplicateConfig{
		ApiUrl:   apiUrl,
		ApiToken: apiToken,
	}, nil
}
