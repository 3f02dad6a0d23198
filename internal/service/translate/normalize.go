package translate

// keyRenames maps the client's snake_case field names to the upstream's
// camelCase equivalents. Keys not listed here pass through unchanged, so the
// pass is a no-op on already-normalized input.
var keyRenames = map[string]string{
	"client_content":      "clientContent",
	"inline_data":         "inlineData",
	"mime_type":           "mimeType",
	"generation_config":   "generationConfig",
	"response_modalities": "responseModalities",
	"response_mime_type":  "responseMimeType",
	"language_code":       "languageCode",
}

// normalizeValue renames keys recursively, object fields and array elements
// alike. The "role" field is removed entirely; the bidirectional envelope
// rejects it on the single-part payloads this relay produces.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if k == "role" {
				continue
			}
			if renamed, ok := keyRenames[k]; ok {
				k = renamed
			}
			out[k] = normalizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return v
	}
}
