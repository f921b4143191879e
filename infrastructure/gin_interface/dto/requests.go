package dto

type GenerateStoryRequest struct {
	Genre       string `json:"genre" binding:"required"`
	Description string `json:"description" binding:"required"`
	Language    string `json:"language"`
	Provider    string `json:"provider"`
}

type GenerateImagesRequest struct {
	ImagePrompts []string `json:"imagePrompts" binding:"required"`
	Provider     string   `json:"provider"`
	Model        string   `json:"model"`
	Style        string   `json:"style"`
	CurrentIndex *int     `json:"currentIndex"`
	BatchSize    *int     `json:"batchSize"`
}

type GenerateAudioRequest struct {
	AudioTexts   []string `json:"audioTexts" binding:"required"`
	Language     string   `json:"language"`
	Voice        string   `json:"voice"`
	Speed        *float64 `json:"speed"`
	OutputFormat string   `json:"outputFormat"`
	Provider     string   `json:"provider"`
}

type CreateStoryRequest struct {
	Genre         string   `json:"genre" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Language      string   `json:"language"`
	TextProvider  string   `json:"textProvider"`
	ImageProvider string   `json:"imageProvider"`
	ImageModel    string   `json:"imageModel"`
	Style         string   `json:"style"`
	AudioProvider string   `json:"audioProvider"`
	Voice         string   `json:"voice"`
	Speed         *float64 `json:"speed"`
}
