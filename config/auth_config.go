package config

import (
	"fmt"
	"os"
)

type AuthConfig struct {
	JwksURL string
}

// GetAuthConfig returns an error when JWKS_URL is unset; the API then runs
// without bearer authentication.
func GetAuthConfig() (*AuthConfig, error) {
	jwksURL := os.Getenv("JWKS_URL")
	if jwksURL == "" {
		return nil, fmt.Errorf("JWKS_URL is not set")
	}
	return &AuthConfig{JwksURL: jwksURL}, nil
}
