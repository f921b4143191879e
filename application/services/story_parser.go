package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"illustrated-story-api/domain"
	"strings"
)

// ParseError explains why provider output could not be turned into a story.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseStory extracts the first syntactically valid JSON object from free
// form model output and validates it as a story of domain.SceneCount scenes.
func ParseStory(raw string) (domain.ParsedStory, error) {
	block, ok := firstJSONObject(raw)
	if !ok {
		return domain.ParsedStory{}, &ParseError{Reason: "no valid JSON object found in model output"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(block, &fields); err != nil {
		return domain.ParsedStory{}, &ParseError{Reason: "story block is not an object", Err: err}
	}
	scenesRaw, ok := fields["scenes"]
	if !ok {
		return domain.ParsedStory{}, &ParseError{Reason: "story has no scenes field"}
	}
	if trimmed := bytes.TrimSpace(scenesRaw); len(trimmed) == 0 || trimmed[0] != '[' {
		return domain.ParsedStory{}, &ParseError{Reason: "scenes must be an array"}
	}

	var story domain.ParsedStory
	if err := json.Unmarshal(block, &story); err != nil {
		return domain.ParsedStory{}, &ParseError{Reason: "story has an unexpected shape", Err: err}
	}
	if len(story.Scenes) != domain.SceneCount {
		return domain.ParsedStory{}, &ParseError{
			Reason: fmt.Sprintf("expected %d scenes, got %d", domain.SceneCount, len(story.Scenes)),
		}
	}

	story.Title = strings.TrimSpace(story.Title)
	for i := range story.Scenes {
		scene := &story.Scenes[i]
		if strings.TrimSpace(scene.ImagePrompt) == "" {
			return domain.ParsedStory{}, &ParseError{Reason: fmt.Sprintf("scene %d has no imagePrompt", i+1)}
		}
		if strings.TrimSpace(scene.AudioText) == "" {
			return domain.ParsedStory{}, &ParseError{Reason: fmt.Sprintf("scene %d has no audioText", i+1)}
		}
		if scene.ID == 0 {
			scene.ID = i + 1
		}
	}

	return story, nil
}

// firstJSONObject tries every opening brace in order and returns the first one
// that starts a complete, valid JSON object.
func firstJSONObject(raw string) (json.RawMessage, bool) {
	for offset := 0; offset < len(raw); {
		i := strings.IndexByte(raw[offset:], '{')
		if i < 0 {
			return nil, false
		}
		start := offset + i

		var candidate json.RawMessage
		decoder := json.NewDecoder(strings.NewReader(raw[start:]))
		if err := decoder.Decode(&candidate); err == nil {
			return candidate, true
		}
		offset = start + 1
	}
	return nil, false
}
