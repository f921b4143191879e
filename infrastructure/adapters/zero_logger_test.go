package adapters

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologWrapper_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologWrapper("warn", &buf)

	logger.Info("dropped")
	logger.With(map[string]interface{}{"story_id": "s1"}).
		ErrorWithFields(errors.New("boom"), "failed", map[string]interface{}{"index": 2})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "s1", entry["story_id"])
	assert.Equal(t, float64(2), entry["index"])
}

func TestZerologWrapper_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologWrapper("verbose", &buf)

	logger.Debug("dropped")
	logger.Info("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
