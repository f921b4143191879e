package domain

type PipelineState string

const (
	IdlePipelineState             PipelineState = "idle"
	GeneratingTextPipelineState   PipelineState = "generating_text"
	GeneratingImagesPipelineState PipelineState = "generating_images"
	GeneratingAudioPipelineState  PipelineState = "generating_audio"
	AssembledPipelineState        PipelineState = "assembled"
	AbortedPipelineState          PipelineState = "aborted"
)

var stateOrder = map[PipelineState]int{
	IdlePipelineState:             0,
	GeneratingTextPipelineState:   1,
	GeneratingImagesPipelineState: 2,
	GeneratingAudioPipelineState:  3,
	AssembledPipelineState:        4,
	AbortedPipelineState:          4,
}

// Terminal reports whether no further transition is allowed from s.
func (s PipelineState) Terminal() bool {
	return s == AssembledPipelineState || s == AbortedPipelineState
}

// CanTransition reports whether moving from s to next keeps the pipeline
// strictly forward. Aborting is allowed from any non-terminal state.
func (s PipelineState) CanTransition(next PipelineState) bool {
	if s.Terminal() {
		return false
	}
	if next == AbortedPipelineState {
		return true
	}
	return stateOrder[next] == stateOrder[s]+1
}

type PipelineEventType string

const (
	StagePipelineEvent PipelineEventType = "stage"
	ImagePipelineEvent PipelineEventType = "image"
	AudioPipelineEvent PipelineEventType = "audio"
	StoryPipelineEvent PipelineEventType = "story"
)

// PipelineEvent is emitted to observers while a story is being generated.
type PipelineEvent struct {
	Type   PipelineEventType `json:"type"`
	State  PipelineState     `json:"state,omitempty"`
	Index  int               `json:"index"`
	Status ResultStatus      `json:"status,omitempty"`
	Ref    string            `json:"ref,omitempty"`
	Story  *Story            `json:"story,omitempty"`
}
