package config

import (
	"fmt"
	"os"
)

type ArkConfig struct {
	ApiKey string
	Region string
	Model  string
}

func GetArkConfig() (*ArkConfig, error) {
	apiKey := os.Getenv("ARK_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ARK_API_KEY must be set")
	}
	model := os.Getenv("ARK_MODEL")
	if model == "" {
		return nil, fmt.Errorf("ARK_MODEL must be set")
	}
	region := os.Getenv("ARK_REGION")
	if region == "" {
		region = "cn-beijing"
	}
	return &ArkConfig{
		ApiKey: apiKey,
		Region: region,
		Model:  model,
	}, nil
}
