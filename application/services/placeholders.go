package services

import (
	"fmt"
	"illustrated-story-api/domain"
	"strings"
	"time"
)

// SilentAudioRef is a short silent MP3 used when narration cannot be generated.
const SilentAudioRef = "data:audio/mpeg;base64,SUQzBAAAAAAAI1RTU0UAAAAPAAADTGF2ZjU4Ljc2LjEwMAAAAAAAAAAAAAAA//tQAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAASW5mbwAAAA8AAAACAAABIADAwMDAwMDAwMDAwMDAwMDAwMDAwMDAwMDAwMDAwMDAwMDAwMDA//////////////////////////////////////////////////////////////////8AAAAATGF2YzU4LjEzAAAAAAAAAAAAAAAAJAQKAAAAAAAAASABTxItAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

const (
	placeholderImageBase = "https://picsum.photos/1024/768"
	placeholderImageURL  = placeholderImageBase + "?random=%d-%d"
)

// placeholderFor returns the stand-in artifact for kind. Text has none.
func placeholderFor(kind domain.GenerationKind, index int, now time.Time) *domain.Artifact {
	switch kind {
	case domain.ImageGenerationKind:
		return domain.NewRemoteArtifact(fmt.Sprintf(placeholderImageURL, now.UnixMilli(), index)).
			WithMeta("placeholder", "true")
	case domain.SpeechGenerationKind:
		return domain.NewRemoteArtifact(SilentAudioRef).
			WithMeta("placeholder", "true")
	default:
		return nil
	}
}

// IsPlaceholderRef reports whether ref points at a stand-in artifact.
func IsPlaceholderRef(ref string) bool {
	return ref == SilentAudioRef || strings.HasPrefix(ref, placeholderImageBase)
}
