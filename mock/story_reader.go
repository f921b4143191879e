package mock_generator

import (
	"embed"
	"illustrated-story-api/application/ports/outbound"
	"io/fs"
)

//go:embed story.json
var fixtures embed.FS

type StoryReader interface {
	Read(fileName string) (string, error)
}

type fsStoryReader struct {
	logger outbound.LoggerPort
	files  fs.FS
}

// NewStoryReader reads fixtures from files, or from the bundled fixtures when
// files is nil.
func NewStoryReader(logger outbound.LoggerPort, files fs.FS) StoryReader {
	if files == nil {
		files = fixtures
	}
	return &fsStoryReader{
		logger: logger,
		files:  files,
	}
}

func (f *fsStoryReader) Read(fileName string) (string, error) {
	content, err := fs.ReadFile(f.files, fileName)
	if err != nil {
		f.logger.ErrorWithFields(err, "failed to read story fixture", map[string]interface{}{
			"file": fileName,
		})
		return "", err
	}
	return string(content), nil
}
