package genai

// Sections is the validated generation payload: one replacement text block
// per rewritten resume section.
type Sections struct {
	Summary  string
	Skills   string
	Projects string
}

// GenerateContentRequest is the Gemini generateContent request body.
type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is a single turn of request content.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is one part of a content turn.
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig carries generation parameters. Requesting a JSON MIME
// type makes the model return the strict-JSON payload the prompt demands.
type GenerationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}
