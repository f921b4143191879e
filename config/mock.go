package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type MockConfig struct {
	Delay       int
	FailIndices map[int]bool
}

// GetMockConfig reads MOCK_DELAY_MS and MOCK_FAIL_INDICES, a comma separated
// list of item indices the mock image and speech providers fail on.
func GetMockConfig() (*MockConfig, error) {
	delay, err := intEnv("MOCK_DELAY_MS", 0)
	if err != nil {
		return nil, err
	}
	failIndices, err := ParseIndexList(os.Getenv("MOCK_FAIL_INDICES"))
	if err != nil {
		return nil, err
	}
	return &MockConfig{
		Delay:       delay,
		FailIndices: failIndices,
	}, nil
}

func ParseIndexList(raw string) (map[int]bool, error) {
	indices := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		index, err := strconv.Atoi(part)
		if err != nil || index < 0 {
			return nil, fmt.Errorf("invalid index %q in MOCK_FAIL_INDICES", part)
		}
		indices[index] = true
	}
	return indices, nil
}
