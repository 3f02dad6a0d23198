package translate

// Wire shapes for the bidirectional upstream envelope.

// Setup opens a bidirectional generation session.
type Setup struct {
	Model             string            `json:"model"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
}

// GenerationConfig requests the response shape for the session.
type GenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	LanguageCode       string   `json:"languageCode,omitempty"`
}

// Content is a sequence of parts.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is one piece of content, text or inline media.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob carries inline media with its MIME type.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type setupMessage struct {
	Setup *Setup `json:"setup"`
}

type clientContentMessage struct {
	ClientContent *Content `json:"clientContent"`
}

type clientEventMessage struct {
	ClientEvent string `json:"clientEvent"`
}
