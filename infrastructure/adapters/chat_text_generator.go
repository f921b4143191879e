package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
	"io"
	"net/http"
	"strings"

	"github.com/donovanhide/eventsource"
)

const (
	ChatProviderName = "openai"
	DoneSignal       = "[DONE]"
)

type chatGptRequest struct {
	Stream   bool             `json:"stream"`
	Model    string           `json:"model"`
	Messages []chatGptMessage `json:"messages"`
}

type chatGptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatGptChunkBody struct {
	Choices []chatGptResponseChoice `json:"choices"`
}

type chatGptResponseChoice struct {
	Index int `json:"index"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

// chatTextGenerator consumes an OpenAI compatible streamed chat completion and
// returns the concatenated text. The stream is never reconnected.
type chatTextGenerator struct {
	logger     outbound.LoggerPort
	gptConfig  *config.GptConfig
	httpClient *http.Client
}

func NewChatTextGenerator(gptConfig *config.GptConfig, httpClient *http.Client, logger outbound.LoggerPort) outbound.ProviderPort {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &chatTextGenerator{
		logger:     logger,
		gptConfig:  gptConfig,
		httpClient: httpClient,
	}
}

func (s *chatTextGenerator) Name() string {
	return ChatProviderName
}

func (s *chatTextGenerator) Kind() domain.GenerationKind {
	return domain.TextGenerationKind
}

func (s *chatTextGenerator) Generate(ctx context.Context, genReq domain.GenerationRequest) (*domain.Artifact, error) {
	if strings.TrimSpace(genReq.Payload) == "" {
		return nil, domain.NewProviderError(ChatProviderName, "empty_payload", "prompt is empty")
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := s.createRequest(streamCtx, genReq.Payload, genReq.Option(domain.ModelOption, s.gptConfig.Model))
	if err != nil {
		s.logger.Error(err, "Failed to create HTTP request for chat stream")
		return nil, domain.NewProviderError(ChatProviderName, "request_error", err.Error())
	}

	// SubscribeWith installs its own redirect policy on the client it is given.
	client := *s.httpClient
	stream, err := eventsource.SubscribeWith("", &client, req)
	if err != nil {
		var subscriptionErr eventsource.SubscriptionError
		if errors.As(err, &subscriptionErr) {
			return nil, &domain.ProviderError{
				Provider:   ChatProviderName,
				Code:       "http_status",
				Message:    strings.TrimSpace(subscriptionErr.Message),
				StatusCode: subscriptionErr.Code,
			}
		}
		s.logger.Error(err, "Failed to subscribe to chat stream")
		return nil, domain.NewProviderError(ChatProviderName, "transport_error", err.Error())
	}

	var builder strings.Builder
	var streamErr error
	finished := false
	for {
		select {
		case ev, ok := <-stream.Events:
			if !ok {
				return nil, domain.NewProviderError(ChatProviderName, "stream_closed", "event stream closed unexpectedly")
			}
			if finished {
				continue
			}
			if ev.Data() == DoneSignal {
				finished = true
				continue
			}
			payload, rejected, err := s.extractPayload(ev)
			if err != nil {
				streamErr = domain.NewProviderError(ChatProviderName, "malformed_response", err.Error())
				finished = true
				cancel()
				continue
			}
			if rejected {
				streamErr = &domain.RejectionError{Provider: ChatProviderName, Reason: "content_filter"}
				finished = true
				cancel()
				continue
			}
			builder.WriteString(payload)
		case err := <-stream.Errors:
			// The stream goroutine has stopped sending once it reports an
			// error, so closing here cannot race with it.
			stream.Close()
			if streamErr != nil {
				return nil, streamErr
			}
			if !errors.Is(err, io.EOF) {
				s.logger.Error(err, "Error occurred during chat streaming")
				return nil, domain.NewProviderError(ChatProviderName, "stream_error", err.Error())
			}
			if builder.Len() == 0 {
				return nil, domain.NewProviderError(ChatProviderName, "missing_payload", "stream produced no content")
			}
			return domain.NewInlineArtifact([]byte(builder.String()), "text/plain"), nil
		}
	}
}

func (s *chatTextGenerator) extractPayload(event eventsource.Event) (string, bool, error) {
	var chunkBody chatGptChunkBody
	err := json.Unmarshal([]byte(event.Data()), &chunkBody)
	if err != nil {
		return "", false, err
	}
	if len(chunkBody.Choices) == 0 {
		return "", false, nil
	}
	choice := chunkBody.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", true, nil
	}
	return choice.Delta.Content, false, nil
}

func (s *chatTextGenerator) createRequest(ctx context.Context, prompt string, model string) (*http.Request, error) {
	promptReq := chatGptRequest{
		Stream: true,
		Model:  model,
		Messages: []chatGptMessage{
			{Role: "user", Content: prompt},
		},
	}

	payloadBytes, err := json.Marshal(promptReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gptConfig.ApiUrl, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+s.gptConfig.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
