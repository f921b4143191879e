package adapters

import (
	"context"
	"fmt"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
	"net/http"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/schema"
)

const ArkProviderName = "ark"

// ChatModel is the slice of the eino chat model API the Ark adapter needs.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message) (*schema.Message, error)
}

type arkChatModel struct {
	model *ark.ChatModel
}

func (a *arkChatModel) Generate(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
	return a.model.Generate(ctx, input)
}

type arkTextGenerator struct {
	logger    outbound.LoggerPort
	chatModel ChatModel
}

func NewArkChatModel(ctx context.Context, arkConfig *config.ArkConfig, httpClient *http.Client) (ChatModel, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey:     arkConfig.ApiKey,
		Region:     arkConfig.Region,
		HTTPClient: httpClient,
		Model:      arkConfig.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}
	return &arkChatModel{model: chatModel}, nil
}

func NewArkTextGenerator(chatModel ChatModel, logger outbound.LoggerPort) outbound.ProviderPort {
	return &arkTextGenerator{
		logger:    logger,
		chatModel: chatModel,
	}
}

func (a *arkTextGenerator) Name() string {
	return ArkProviderName
}

func (a *arkTextGenerator) Kind() domain.GenerationKind {
	return domain.TextGenerationKind
}

func (a *arkTextGenerator) Generate(ctx context.Context, genReq domain.GenerationRequest) (*domain.Artifact, error) {
	if strings.TrimSpace(genReq.Payload) == "" {
		return nil, domain.NewProviderError(ArkProviderName, "empty_payload", "prompt is empty")
	}

	message, err := a.chatModel.Generate(ctx, []*schema.Message{
		{Role: schema.User, Content: genReq.Payload},
	})
	if err != nil {
		a.logger.Error(err, "Ark chat model call failed")
		return nil, domain.NewProviderError(ArkProviderName, "call_failed", err.Error())
	}
	if message == nil || strings.TrimSpace(message.Content) == "" {
		return nil, domain.NewProviderError(ArkProviderName, "missing_payload", "chat model returned no content")
	}

	return domain.NewInlineArtifact([]byte(message.Content), "text/plain"), nil
}
