package domain

import (
	"encoding/base64"
	"fmt"
	"time"
)

// SceneCount is the number of scenes every story is generated with.
const SceneCount = 5

type GenerationKind string

const (
	TextGenerationKind   GenerationKind = "text"
	ImageGenerationKind  GenerationKind = "image"
	SpeechGenerationKind GenerationKind = "speech"
)

type ResultStatus string

const (
	SuccessResultStatus     ResultStatus = "success"
	PlaceholderResultStatus ResultStatus = "placeholder"
	FailedResultStatus      ResultStatus = "failed"
)

// GenerationRequest is one unit of work for a provider: one scene's prompt or
// one scene's narration text. Options are copied and sanitized on creation.
type GenerationRequest struct {
	Kind    GenerationKind
	Payload string
	Index   int
	Options map[string]string
}

func NewGenerationRequest(kind GenerationKind, payload string, index int, options map[string]string) GenerationRequest {
	return GenerationRequest{
		Kind:    kind,
		Payload: payload,
		Index:   index,
		Options: SanitizeOptions(kind, options),
	}
}

// Option returns the sanitized option value, or fallback when unset.
func (r GenerationRequest) Option(key string, fallback string) string {
	if v, ok := r.Options[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Artifact is either inline binary data or a remote locator. Meta carries
// provider details such as the model that produced it.
type Artifact struct {
	Data     []byte
	MimeType string
	URL      string
	Meta     map[string]string
}

func NewInlineArtifact(data []byte, mimeType string) *Artifact {
	return &Artifact{Data: data, MimeType: mimeType}
}

func NewRemoteArtifact(url string) *Artifact {
	return &Artifact{URL: url}
}

// WithMeta returns a copy of a with key set in its metadata.
func (a *Artifact) WithMeta(key string, value string) *Artifact {
	meta := make(map[string]string, len(a.Meta)+1)
	for k, v := range a.Meta {
		meta[k] = v
	}
	meta[key] = value
	copied := *a
	copied.Meta = meta
	return &copied
}

// Ref returns a reference the caller can consume directly: the remote URL when
// present, otherwise a self-describing data URL.
func (a *Artifact) Ref() string {
	if a == nil {
		return ""
	}
	if a.URL != "" {
		return a.URL
	}
	return fmt.Sprintf("data:%s;base64,%s", a.MimeType, base64.StdEncoding.EncodeToString(a.Data))
}

func (a *Artifact) IsRemote() bool {
	return a != nil && a.URL != ""
}

func (a *Artifact) Size() int {
	if a == nil {
		return 0
	}
	if a.URL != "" {
		return len(a.URL)
	}
	return len(a.Data)
}

type GenerationResult struct {
	Index        int
	Status       ResultStatus
	Artifact     *Artifact
	Error        string
	ProviderMeta map[string]string
}

func (r GenerationResult) Succeeded() bool {
	return r.Status == SuccessResultStatus
}

func (r GenerationResult) Meta(key string) string {
	return r.ProviderMeta[key]
}

type SceneDescriptor struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	ImagePrompt string `json:"imagePrompt"`
	AudioText   string `json:"audioText"`
}

type ParsedStory struct {
	Title  string            `json:"title"`
	Scenes []SceneDescriptor `json:"scenes"`
}

func (p ParsedStory) ImagePrompts() []string {
	prompts := make([]string, 0, len(p.Scenes))
	for _, scene := range p.Scenes {
		prompts = append(prompts, scene.ImagePrompt)
	}
	return prompts
}

func (p ParsedStory) AudioTexts() []string {
	texts := make([]string, 0, len(p.Scenes))
	for _, scene := range p.Scenes {
		texts = append(texts, scene.AudioText)
	}
	return texts
}

type Scene struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	Text             string `json:"text"`
	ImagePrompt      string `json:"imagePrompt"`
	AudioText        string `json:"audioText"`
	Image            string `json:"image"`
	Audio            string `json:"audio"`
	ImagePlaceholder bool   `json:"imagePlaceholder"`
	AudioPlaceholder bool   `json:"audioPlaceholder"`
}

// StageSummary tallies one media stage. Failed counts every item that did not
// succeed, placeholders included, matching the reported "failed" total, so
// Failed and Placeholders must not be added together.
type StageSummary struct {
	Total         int `json:"total"`
	Successful    int `json:"successful"`
	Placeholders  int `json:"placeholders"`
	Failed        int `json:"failed"`
	ArtifactBytes int `json:"artifactBytes"`
}

// SummarizeResults tallies a stage's results. Placeholders count as failed
// generations as well as substitutions.
func SummarizeResults(results []GenerationResult) StageSummary {
	summary := StageSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case SuccessResultStatus:
			summary.Successful++
		case PlaceholderResultStatus:
			summary.Placeholders++
			summary.Failed++
		default:
			summary.Failed++
		}
		summary.ArtifactBytes += r.Artifact.Size()
	}
	return summary
}

type StoryMetadata struct {
	Images        StageSummary `json:"images"`
	Audio         StageSummary `json:"audio"`
	ArtifactBytes int          `json:"artifactBytes"`
	GeneratedAt   time.Time    `json:"generatedAt"`
}

type Story struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Scenes   []Scene       `json:"scenes"`
	Metadata StoryMetadata `json:"metadata"`
}

// BatchCursor marks progress through a long request list. It is held by the
// caller between invocations.
type BatchCursor struct {
	StartIndex int
	BatchSize  int
}

type BatchProgress struct {
	Cursor    BatchCursor
	Total     int
	Processed int
	NextIndex int
	Complete  bool
}
