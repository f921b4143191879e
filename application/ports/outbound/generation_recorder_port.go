package outbound

import (
	"illustrated-story-api/domain"
	"time"
)

type GenerationRecorderPort interface {
	ObserveGeneration(provider string, kind domain.GenerationKind, status domain.ResultStatus, duration time.Duration)
	ObserveStage(state domain.PipelineState)
}
