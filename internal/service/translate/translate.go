// Package translate reshapes the client control vocabulary into the
// bidirectional upstream envelope. Binary audio frames never pass through
// here; the relay forwards those untouched.
package translate

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"ai-voice-relay-service/internal/observability/logging"
)

// AudioMimeType is the PCM encoding both directions of a session use.
const AudioMimeType = "audio/pcm;rate=16000"

// languageCode is the synthesis language requested in every setup envelope.
const languageCode = "ka-GE"

// GenerationStart is the event that triggers response generation upstream.
const GenerationStart = "GENERATION_START"

// Result kinds, used for metrics and logging.
const (
	KindSetup           = "setup"
	KindAudioAppend     = "audio_append"
	KindGenerationStart = "generation_start"
	KindClientContent   = "client_content"
	KindPassthrough     = "passthrough"
	KindMalformed       = "malformed"
)

// Result is the outcome of translating one client text message.
type Result struct {
	Payload []byte // message to send upstream; nil when Drop is set
	Kind    string
	Drop    bool
}

// sessionStart is the client's session-opening control message.
type sessionStart struct {
	Type   string `json:"type"`
	Model  string `json:"model"`
	Config struct {
		SystemInstruction string `json:"systemInstruction"`
	} `json:"config"`
}

// audioAppend is the client's base64-audio control message. The data string
// is forwarded as-is, never decoded or re-encoded.
type audioAppend struct {
	Type  string `json:"type"`
	Audio struct {
		Data string `json:"data"`
	} `json:"audio"`
}

// Translator converts client control messages for one session.
type Translator struct {
	model string
	log   zerolog.Logger
}

// New creates a Translator for the given effective model.
func New(model string) *Translator {
	return &Translator{
		model: model,
		log:   logging.WithComponent("translate"),
	}
}

// Translate maps one client text message to its upstream form.
//
// Dispatch order, first match wins:
//  1. session.start            -> setup envelope
//  2. commit / response.create -> GENERATION_START client event
//  3. audio append with data   -> clientContent with one inlineData part
//  4. anything else that is a JSON object -> key-normalized and forwarded
//  5. unparseable text -> dropped and logged, never forwarded
func (t *Translator) Translate(data []byte) Result {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.log.Debug().Err(err).Int("size", len(data)).Msg("dropping unparseable client message")
		return Result{Kind: KindMalformed, Drop: true}
	}

	msgType, _ := raw["type"].(string)
	switch msgType {
	case "session.start":
		var msg sessionStart
		if err := json.Unmarshal(data, &msg); err == nil {
			return t.translateSessionStart(msg)
		}

	case "input_audio_buffer.commit", "response.create":
		payload, _ := json.Marshal(clientEventMessage{ClientEvent: GenerationStart})
		return Result{Payload: payload, Kind: KindGenerationStart}

	case "input_audio_buffer.append":
		var msg audioAppend
		if err := json.Unmarshal(data, &msg); err == nil && msg.Audio.Data != "" {
			return t.translateAudioAppend(msg)
		}
	}

	normalized := normalizeValue(raw)
	payload, err := json.Marshal(normalized)
	if err != nil {
		t.log.Debug().Err(err).Msg("dropping unserializable client message")
		return Result{Kind: KindMalformed, Drop: true}
	}

	kind := KindPassthrough
	if m, ok := normalized.(map[string]any); ok {
		if _, has := m["clientContent"]; has {
			kind = KindClientContent
		}
	}
	return Result{Payload: payload, Kind: kind}
}

func (t *Translator) translateSessionStart(msg sessionStart) Result {
	model := msg.Model
	if model == "" {
		model = t.model
	}

	setup := &Setup{
		Model: "models/" + model,
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			ResponseMimeType:   AudioMimeType,
			LanguageCode:       languageCode,
		},
	}
	if msg.Config.SystemInstruction != "" {
		setup.SystemInstruction = &Content{
			Parts: []Part{{Text: msg.Config.SystemInstruction}},
		}
	}

	payload, _ := json.Marshal(setupMessage{Setup: setup})
	return Result{Payload: payload, Kind: KindSetup}
}

func (t *Translator) translateAudioAppend(msg audioAppend) Result {
	content := &Content{
		Parts: []Part{{
			InlineData: &Blob{
				MimeType: AudioMimeType,
				Data:     msg.Audio.Data,
			},
		}},
	}

	payload, _ := json.Marshal(clientContentMessage{ClientContent: content})
	return Result{Payload: payload, Kind: KindAudioAppend}
}
