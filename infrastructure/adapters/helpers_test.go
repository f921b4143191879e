package adapters

import (
	"illustrated-story-api/application/ports/outbound"
	"io"
)

func newTestLogger() outbound.LoggerPort {
	return NewZerologWrapper("disabled", io.Discard)
}
