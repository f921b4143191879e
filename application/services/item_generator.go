package services

import (
	"context"
	"errors"
	"fmt"
	"illustrated-story-api/application/ports/inbound"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/domain"
	"strconv"
	"time"
)

type storyIDKey struct{}

// WithStoryID tags ctx with the story that generated artifacts belong to.
func WithStoryID(ctx context.Context, storyID string) context.Context {
	return context.WithValue(ctx, storyIDKey{}, storyID)
}

func storyIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(storyIDKey{}).(string); ok && id != "" {
		return id
	}
	return "unassigned"
}

type ItemGeneratorOption func(*itemGenerator)

// WithArtifactStore uploads successful inline artifacts and replaces them with
// their remote URL.
func WithArtifactStore(store outbound.ArtifactStorePort) ItemGeneratorOption {
	return func(g *itemGenerator) {
		g.artifactStore = store
	}
}

func WithClock(now func() time.Time) ItemGeneratorOption {
	return func(g *itemGenerator) {
		g.now = now
	}
}

type itemGenerator struct {
	logger        outbound.LoggerPort
	registry      *ProviderRegistry
	recorder      outbound.GenerationRecorderPort
	artifactStore outbound.ArtifactStorePort
	timeout       time.Duration
	now           func() time.Time
}

func NewItemGenerator(logger outbound.LoggerPort, registry *ProviderRegistry, recorder outbound.GenerationRecorderPort,
	timeout time.Duration, opts ...ItemGeneratorOption) inbound.ItemGeneratorPort {
	g := &itemGenerator{
		logger:   logger,
		registry: registry,
		recorder: recorder,
		timeout:  timeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *itemGenerator) Run(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult {
	provider, err := g.registry.Resolve(req.Kind, req.Option(domain.ProviderOption, ""))
	if err != nil {
		return g.substitute(req, err, map[string]string{"provider": "none"})
	}

	itemCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := g.now()
	artifact, err := provider.Generate(itemCtx, req)
	duration := g.now().Sub(start)

	meta := map[string]string{
		"provider":   provider.Name(),
		"durationMs": strconv.FormatInt(duration.Milliseconds(), 10),
	}
	if model := req.Option(domain.ModelOption, ""); model != "" {
		meta["model"] = model
	}

	if err == nil && artifact == nil {
		err = domain.NewProviderError(provider.Name(), "missing_payload", "provider returned no artifact")
	}
	if err != nil {
		if errors.Is(itemCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", g.timeout, err)
		}
		result := g.substitute(req, err, meta)
		g.record(provider.Name(), req.Kind, result.Status, duration)
		return result
	}

	for k, v := range artifact.Meta {
		meta[k] = v
	}
	artifact = g.offload(ctx, req, artifact)

	g.record(provider.Name(), req.Kind, domain.SuccessResultStatus, duration)
	return domain.GenerationResult{
		Index:        req.Index,
		Status:       domain.SuccessResultStatus,
		Artifact:     artifact,
		ProviderMeta: meta,
	}
}

// substitute builds the terminal result for a failed attempt. Content
// rejections are reported as failed but still carry a stand-in so callers
// always get a usable reference.
func (g *itemGenerator) substitute(req domain.GenerationRequest, cause error, meta map[string]string) domain.GenerationResult {
	g.logger.WarnWithFields("Generation failed, substituting placeholder", map[string]interface{}{
		"kind":     req.Kind,
		"index":    req.Index,
		"provider": meta["provider"],
		"error":    cause.Error(),
	})

	status := domain.PlaceholderResultStatus
	var rejection *domain.RejectionError
	if errors.As(cause, &rejection) {
		status = domain.FailedResultStatus
		meta["rejected"] = "true"
	}

	placeholder := placeholderFor(req.Kind, req.Index, g.now())
	if placeholder == nil {
		status = domain.FailedResultStatus
	} else {
		meta["placeholder"] = "true"
	}

	return domain.GenerationResult{
		Index:        req.Index,
		Status:       status,
		Artifact:     placeholder,
		Error:        cause.Error(),
		ProviderMeta: meta,
	}
}

func (g *itemGenerator) offload(ctx context.Context, req domain.GenerationRequest, artifact *domain.Artifact) *domain.Artifact {
	if g.artifactStore == nil || artifact.IsRemote() || req.Kind == domain.TextGenerationKind {
		return artifact
	}
	url, err := g.artifactStore.Save(ctx, outbound.SaveArtifactParams{
		StoryID:  storyIDFrom(ctx),
		Kind:     req.Kind,
		Index:    req.Index,
		Artifact: artifact,
	})
	if err != nil {
		g.logger.ErrorWithFields(err, "Failed to offload artifact, keeping inline data", map[string]interface{}{
			"kind":  req.Kind,
			"index": req.Index,
		})
		return artifact
	}
	remote := domain.NewRemoteArtifact(url)
	remote.MimeType = artifact.MimeType
	remote.Meta = artifact.Meta
	return remote
}

func (g *itemGenerator) record(provider string, kind domain.GenerationKind, status domain.ResultStatus, duration time.Duration) {
	if g.recorder == nil {
		return
	}
	g.recorder.ObserveGeneration(provider, kind, status, duration)
}
