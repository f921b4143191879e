package adapters

import (
	"context"
	"errors"
	"fmt"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/domain"
	"io"
	"net/http"
	"strings"
)

const maxErrorBodyLength = 512

// FetchedContent is a successful response body with its declared content type.
type FetchedContent struct {
	Payload     []byte
	ContentType string
}

type ContentFetcher interface {
	FetchContent(provider string, req *http.Request) (*FetchedContent, error)
}

type contentFetcher struct {
	logger outbound.LoggerPort
	client *http.Client
}

func NewContentFetcher(logger outbound.LoggerPort, client *http.Client) ContentFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &contentFetcher{
		logger: logger,
		client: client,
	}
}

func (c *contentFetcher) FetchContent(provider string, req *http.Request) (*FetchedContent, error) {
	res, err := c.client.Do(req)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to send the HTTP request", map[string]interface{}{
			"provider": provider,
			"method":   req.Method,
			"URL":      req.URL.Redacted(),
		})
		code := "transport_error"
		if errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			code = "timeout"
		}
		return nil, domain.NewProviderError(provider, code, err.Error())
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.ErrorWithFields(err, "Failed to close the response body", map[string]interface{}{
				"provider": provider,
				"URL":      req.URL.Redacted(),
			})
		}
	}(res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		bodyPayload, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyLength))
		message := strings.TrimSpace(string(bodyPayload))
		c.logger.WarnWithFields("HTTP request returned non-OK status code", map[string]interface{}{
			"provider": provider,
			"method":   req.Method,
			"URL":      req.URL.Redacted(),
			"status":   res.StatusCode,
			"message":  message,
		})
		return nil, &domain.ProviderError{
			Provider:   provider,
			Code:       "http_status",
			Message:    fmt.Sprintf("HTTP request returned non-OK status code: %s", message),
			StatusCode: res.StatusCode,
		}
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to read the response body", map[string]interface{}{
			"provider": provider,
			"URL":      req.URL.Redacted(),
		})
		return nil, domain.NewProviderError(provider, "read_error", err.Error())
	}

	return &FetchedContent{
		Payload:     payload,
		ContentType: res.Header.Get("Content-Type"),
	}, nil
}
