package config

import (
	"fmt"
	"illustrated-story-api/domain"
	"os"
	"strconv"
	"time"
)

type PipelineConfig struct {
	ImagePacing      time.Duration
	AudioPacing      time.Duration
	ItemTimeout      time.Duration
	TextTimeout      time.Duration
	MaxBatchSize     int
	WorkerPoolSize   int
	ArtifactOffload  bool
	MockProviders    bool
	DefaultProviders map[domain.GenerationKind]string
}

type ServerConfig struct {
	Address  string
	LogLevel string
}

func GetPipelineConfig() (*PipelineConfig, error) {
	imagePacing, err := durationMillisEnv("IMAGE_PACING_MS", 2000)
	if err != nil {
		return nil, err
	}
	audioPacing, err := durationMillisEnv("AUDIO_PACING_MS", 1500)
	if err != nil {
		return nil, err
	}
	itemTimeout, err := durationMillisEnv("ITEM_TIMEOUT_MS", 45000)
	if err != nil {
		return nil, err
	}
	textTimeout, err := durationMillisEnv("TEXT_TIMEOUT_MS", 60000)
	if err != nil {
		return nil, err
	}
	maxBatchSize, err := intEnv("MAX_BATCH_SIZE", 0)
	if err != nil {
		return nil, err
	}
	if maxBatchSize < 0 {
		return nil, fmt.Errorf("MAX_BATCH_SIZE must not be negative")
	}
	workerPoolSize, err := intEnv("WORKER_POOL_SIZE", 120)
	if err != nil {
		return nil, err
	}
	if workerPoolSize <= 0 {
		return nil, fmt.Errorf("WORKER_POOL_SIZE must be positive")
	}
	artifactOffload, err := boolEnv("ARTIFACT_OFFLOAD", false)
	if err != nil {
		return nil, err
	}
	mockProviders, err := boolEnv("MOCK_PROVIDERS", false)
	if err != nil {
		return nil, err
	}

	return &PipelineConfig{
		ImagePacing:     imagePacing,
		AudioPacing:     audioPacing,
		ItemTimeout:     itemTimeout,
		TextTimeout:     textTimeout,
		MaxBatchSize:    maxBatchSize,
		WorkerPoolSize:  workerPoolSize,
		ArtifactOffload: artifactOffload,
		MockProviders:   mockProviders,
		DefaultProviders: map[domain.GenerationKind]string{
			domain.TextGenerationKind:   os.Getenv("TEXT_PROVIDER"),
			domain.ImageGenerationKind:  os.Getenv("IMAGE_PROVIDER"),
			domain.SpeechGenerationKind: os.Getenv("SPEECH_PROVIDER"),
		},
	}, nil
}

func GetServerConfig() *ServerConfig {
	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = ":8080"
	}
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	return &ServerConfig{
		Address:  address,
		LogLevel: logLevel,
	}
}

func durationMillisEnv(key string, fallback int) (time.Duration, error) {
	millis, err := intEnv(key, fallback)
	if err != nil {
		return 0, err
	}
	if millis < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return time.Duration(millis) * time.Millisecond, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return val, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return val, nil
}
