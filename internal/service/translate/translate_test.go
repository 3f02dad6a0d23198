package translate

import (
	"encoding/json"
	"reflect"
	"testing"
)

func mustUnmarshal(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("failed to unmarshal %s: %v", data, err)
	}
	return out
}

func TestTranslate_SessionStart(t *testing.T) {
	tr := New("gemini-2.0-flash-exp")

	in := []byte(`{"type":"session.start","model":"X","config":{"systemInstruction":"S"}}`)
	res := tr.Translate(in)

	if res.Drop {
		t.Fatal("expected message to be translated, not dropped")
	}
	if res.Kind != KindSetup {
		t.Errorf("expected kind %q, got %q", KindSetup, res.Kind)
	}

	got := mustUnmarshal(t, res.Payload)
	want := map[string]any{
		"setup": map[string]any{
			"model": "models/X",
			"generationConfig": map[string]any{
				"responseModalities": []any{"AUDIO"},
				"responseMimeType":   "audio/pcm;rate=16000",
				"languageCode":       "ka-GE",
			},
			"systemInstruction": map[string]any{
				"parts": []any{map[string]any{"text": "S"}},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("setup envelope mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestTranslate_SessionStart_DefaultModel(t *testing.T) {
	tr := New("gemini-2.0-flash-exp")

	res := tr.Translate([]byte(`{"type":"session.start"}`))

	got := mustUnmarshal(t, res.Payload)
	setup := got["setup"].(map[string]any)
	if setup["model"] != "models/gemini-2.0-flash-exp" {
		t.Errorf("expected default model, got %v", setup["model"])
	}
	if _, has := setup["systemInstruction"]; has {
		t.Error("expected no systemInstruction when config omits it")
	}
}

func TestTranslate_CommitAndResponseCreate(t *testing.T) {
	tr := New("m")

	for _, in := range []string{
		`{"type":"input_audio_buffer.commit"}`,
		`{"type":"response.create"}`,
	} {
		res := tr.Translate([]byte(in))
		if res.Drop {
			t.Fatalf("%s: expected translation, got drop", in)
		}
		if res.Kind != KindGenerationStart {
			t.Errorf("%s: expected kind %q, got %q", in, KindGenerationStart, res.Kind)
		}
		got := mustUnmarshal(t, res.Payload)
		if got["clientEvent"] != "GENERATION_START" {
			t.Errorf("%s: expected GENERATION_START event, got %v", in, got)
		}
	}
}

func TestTranslate_AudioAppend(t *testing.T) {
	tr := New("m")

	res := tr.Translate([]byte(`{"type":"input_audio_buffer.append","audio":{"data":"BASE64"}}`))

	if res.Kind != KindAudioAppend {
		t.Errorf("expected kind %q, got %q", KindAudioAppend, res.Kind)
	}

	got := mustUnmarshal(t, res.Payload)
	want := map[string]any{
		"clientContent": map[string]any{
			"parts": []any{map[string]any{
				"inlineData": map[string]any{
					"mimeType": "audio/pcm;rate=16000",
					"data":     "BASE64",
				},
			}},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("clientContent envelope mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestTranslate_AudioAppend_MissingData_FallsThroughToNormalize(t *testing.T) {
	tr := New("m")

	res := tr.Translate([]byte(`{"type":"input_audio_buffer.append","audio":{}}`))

	if res.Drop {
		t.Fatal("expected forwarded message, got drop")
	}
	if res.Kind != KindPassthrough {
		t.Errorf("expected kind %q, got %q", KindPassthrough, res.Kind)
	}
}

func TestTranslate_ClientContent_AlreadyNormalized_IsNoOp(t *testing.T) {
	tr := New("m")

	in := []byte(`{"clientContent":{"parts":[{"inlineData":{"mimeType":"audio/pcm;rate=16000","data":"D"}}]}}`)
	res := tr.Translate(in)

	if res.Kind != KindClientContent {
		t.Errorf("expected kind %q, got %q", KindClientContent, res.Kind)
	}
	if !reflect.DeepEqual(mustUnmarshal(t, res.Payload), mustUnmarshal(t, in)) {
		t.Errorf("already-normalized message changed: got %s", res.Payload)
	}
}

func TestTranslate_SnakeCaseRenaming(t *testing.T) {
	tr := New("m")

	in := []byte(`{
		"client_content": {
			"parts": [{"inline_data": {"mime_type": "audio/pcm", "data": "D"}}]
		},
		"generation_config": {
			"response_modalities": ["AUDIO"],
			"response_mime_type": "audio/pcm;rate=16000",
			"language_code": "ka-GE"
		}
	}`)
	res := tr.Translate(in)

	got := mustUnmarshal(t, res.Payload)
	cc, ok := got["clientContent"].(map[string]any)
	if !ok {
		t.Fatalf("expected clientContent key, got %v", got)
	}
	parts := cc["parts"].([]any)
	part := parts[0].(map[string]any)
	inline, ok := part["inlineData"].(map[string]any)
	if !ok {
		t.Fatalf("expected inlineData key inside part, got %v", part)
	}
	if inline["mimeType"] != "audio/pcm" {
		t.Errorf("expected mimeType renamed, got %v", inline)
	}

	gc, ok := got["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("expected generationConfig key, got %v", got)
	}
	for _, k := range []string{"responseModalities", "responseMimeType", "languageCode"} {
		if _, has := gc[k]; !has {
			t.Errorf("expected renamed key %q in generationConfig, got %v", k, gc)
		}
	}
}

func TestTranslate_RoleFieldDropped(t *testing.T) {
	tr := New("m")

	in := []byte(`{"clientContent":{"role":"user","parts":[{"text":"hi","role":"user"}]}}`)
	res := tr.Translate(in)

	got := mustUnmarshal(t, res.Payload)
	cc := got["clientContent"].(map[string]any)
	if _, has := cc["role"]; has {
		t.Error("expected top-level role to be dropped")
	}
	part := cc["parts"].([]any)[0].(map[string]any)
	if _, has := part["role"]; has {
		t.Error("expected nested role to be dropped")
	}
	if part["text"] != "hi" {
		t.Errorf("expected text preserved, got %v", part)
	}
}

func TestTranslate_MalformedJSON_Dropped(t *testing.T) {
	tr := New("m")

	for _, in := range []string{"not json", `"just a string"`, `[1,2,3]`} {
		res := tr.Translate([]byte(in))
		if !res.Drop {
			t.Errorf("%s: expected drop, got kind %q payload %s", in, res.Kind, res.Payload)
		}
		if res.Kind != KindMalformed {
			t.Errorf("%s: expected kind %q, got %q", in, KindMalformed, res.Kind)
		}
		if res.Payload != nil {
			t.Errorf("%s: expected nil payload on drop", in)
		}
	}
}

func TestNormalizeValue_Idempotent(t *testing.T) {
	in := map[string]any{
		"clientContent": map[string]any{
			"parts": []any{map[string]any{"inlineData": map[string]any{"mimeType": "m", "data": "d"}}},
		},
	}

	once := normalizeValue(in)
	twice := normalizeValue(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalization is not idempotent:\n once %v\ntwice %v", once, twice)
	}
	if !reflect.DeepEqual(once, in) {
		t.Errorf("normalization changed already-normalized input:\n got %v\nwant %v", once, in)
	}
}
