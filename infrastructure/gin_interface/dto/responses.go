package dto

import (
	"illustrated-story-api/application/ports/inbound"
	"illustrated-story-api/domain"
	"time"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
	Details  string `json:"details,omitempty"`
}

type ItemResult struct {
	SceneIndex     int    `json:"sceneIndex"`
	Prompt         string `json:"prompt"`
	Success        bool   `json:"success"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
	Placeholder    string `json:"placeholder,omitempty"`
	Provider       string `json:"provider,omitempty"`
	Model          string `json:"model,omitempty"`
	EnhancedPrompt string `json:"enhancedPrompt,omitempty"`
	OriginalURL    string `json:"originalUrl,omitempty"`
	Note           string `json:"note,omitempty"`
}

type StageMetadata struct {
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	Total         int       `json:"total"`
	Successful    int       `json:"successful"`
	Failed        int       `json:"failed"`
	Placeholders  int       `json:"placeholders"`
	ArtifactBytes int       `json:"artifactBytes"`
	Timestamp     time.Time `json:"timestamp"`
	RateLimitInfo string    `json:"rateLimitInfo"`
}

type BatchInfo struct {
	CurrentIndex int  `json:"currentIndex"`
	BatchSize    int  `json:"batchSize"`
	NextIndex    int  `json:"nextIndex"`
	Total        int  `json:"total"`
	Complete     bool `json:"complete"`
}

type GenerateImagesResponse struct {
	Images   []string      `json:"images"`
	Results  []ItemResult  `json:"results"`
	Metadata StageMetadata `json:"metadata"`
	Batch    *BatchInfo    `json:"batch,omitempty"`
}

type GenerateAudioResponse struct {
	AudioUrls []string      `json:"audioUrls"`
	Results   []ItemResult  `json:"results"`
	Metadata  StageMetadata `json:"metadata"`
	Batch     *BatchInfo    `json:"batch,omitempty"`
}

// NewItemResults maps stage results to the per-item report. sceneIndex is
// one-based.
func NewItemResults(payloads []string, results []domain.GenerationResult) []ItemResult {
	items := make([]ItemResult, 0, len(results))
	for _, r := range results {
		item := ItemResult{
			SceneIndex:     r.Index + 1,
			Success:        r.Succeeded(),
			Status:         string(r.Status),
			Error:          r.Error,
			Provider:       r.Meta("provider"),
			Model:          r.Meta("model"),
			EnhancedPrompt: r.Meta("enhancedPrompt"),
			OriginalURL:    r.Meta("originalUrl"),
			Note:           r.Meta("note"),
		}
		if r.Index >= 0 && r.Index < len(payloads) {
			item.Prompt = payloads[r.Index]
		}
		if r.Meta("placeholder") == "true" {
			item.Placeholder = r.Artifact.Ref()
		}
		items = append(items, item)
	}
	return items
}

func NewStageMetadata(stage *inbound.MediaStageResult, rateLimitInfo string, now time.Time) StageMetadata {
	return StageMetadata{
		Provider:      stage.Provider,
		Model:         stage.Model,
		Total:         stage.Summary.Total,
		Successful:    stage.Summary.Successful,
		Failed:        stage.Summary.Failed,
		Placeholders:  stage.Summary.Placeholders,
		ArtifactBytes: stage.Summary.ArtifactBytes,
		Timestamp:     now.UTC(),
		RateLimitInfo: rateLimitInfo,
	}
}

// NewBatchInfo reports the cursor only when the caller asked for batching.
func NewBatchInfo(requested bool, progress domain.BatchProgress) *BatchInfo {
	if !requested {
		return nil
	}
	return &BatchInfo{
		CurrentIndex: progress.Cursor.StartIndex,
		BatchSize:    progress.Cursor.BatchSize,
		NextIndex:    progress.NextIndex,
		Total:        progress.Total,
		Complete:     progress.Complete,
	}
}
