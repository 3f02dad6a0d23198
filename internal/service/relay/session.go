package relay

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ai-voice-relay-service/internal/events"
	"ai-voice-relay-service/internal/models"
	"ai-voice-relay-service/internal/observability/logging"
	"ai-voice-relay-service/internal/observability/metrics"
	"ai-voice-relay-service/internal/schema"
	"ai-voice-relay-service/internal/service/translate"
	"ai-voice-relay-service/internal/service/upstream"
)

// frameBuffer holds client frames that arrive while negotiation is still in
// flight (a client typically sends session.start immediately after connect).
const frameBuffer = 64

const (
	directionClientToUpstream = "client_to_upstream"
	directionUpstreamToClient = "upstream_to_client"
)

const (
	eventSessionStarted = "voice.session.started"
	eventSessionEnded   = "voice.session.ended"
)

// Limits defines safety guardrails for one session.
type Limits struct {
	MaxDuration   time.Duration
	MaxAudioBytes int64
}

type frame struct {
	messageType int
	data        []byte
}

// Session is one client-to-relay-to-upstream connection lifecycle. It owns
// exactly one client socket and at most one upstream socket at a time; both
// are released when the session terminates.
type Session struct {
	id         string
	model      string
	apiKey     string
	remoteAddr string

	client       upstream.Conn
	upstreamConn upstream.Conn
	candidate    upstream.Candidate

	resolver   *upstream.Resolver
	translator *translate.Translator
	publisher  *events.Publisher
	validator  *schema.Validator
	metrics    *metrics.Metrics
	lifecycle  *Lifecycle
	limits     Limits
	log        zerolog.Logger

	cancel    context.CancelFunc
	closeOnce sync.Once
	startedAt time.Time

	clientFrames   atomic.Int64
	upstreamFrames atomic.Int64
	clientBytes    atomic.Int64
	upstreamBytes  atomic.Int64

	mu          sync.Mutex
	closeCode   int
	closeReason string
}

// Run drives the session to completion: negotiate an upstream, then relay
// frames in both directions until either side goes away. Blocks until both
// sockets are closed.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	s.startedAt = time.Now()
	s.metrics.RecordSessionStart()

	// The client read pump starts before negotiation so that a client
	// disconnect aborts the remaining candidate attempts. Frames received
	// in the meantime are buffered and forwarded once relay begins.
	frames := make(chan frame, frameBuffer)
	readErr := make(chan error, 1)
	go s.readClient(ctx, frames, readErr)

	if err := s.negotiate(ctx); err != nil {
		s.finish()
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.pumpUpstream()
	}()

	s.pumpClient(frames, readErr)
	wg.Wait()
	s.finish()
}

func (s *Session) readClient(ctx context.Context, frames chan<- frame, readErr chan<- error) {
	defer close(frames)
	for {
		mt, data, err := s.client.ReadMessage()
		if err != nil {
			readErr <- err
			s.cancel()
			return
		}
		select {
		case frames <- frame{messageType: mt, data: data}:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) negotiate(ctx context.Context) error {
	if err := s.lifecycle.BeginNegotiation(); err != nil {
		return err
	}

	conn, candidate, err := s.resolver.Resolve(ctx, s.model, s.apiKey)
	if err != nil {
		if ctx.Err() != nil {
			s.log.Info().Msg("Client disconnected during negotiation")
			s.terminate(websocket.CloseGoingAway, "client disconnected")
		} else {
			s.log.Warn().Err(err).Msg("No upstream candidate accepted the session")
			s.terminate(websocket.CloseTryAgainLater, "no upstream available")
		}
		return err
	}

	s.upstreamConn = conn
	s.candidate = candidate
	s.log = logging.WithEndpoint(s.id, s.model, candidate.Name)
	if err := s.lifecycle.BeginRelay(); err != nil {
		// Terminated while the dial was in flight.
		s.terminate(websocket.CloseGoingAway, "client disconnected")
		return err
	}

	s.publishStarted()
	return nil
}

// pumpUpstream forwards upstream frames to the client verbatim. The
// provider's responses are already in the shape the client expects; no
// reverse translation happens here.
func (s *Session) pumpUpstream() {
	for {
		mt, data, err := s.upstreamConn.ReadMessage()
		if err != nil {
			code, reason := closeStatus(err)
			s.log.Info().Int("closeCode", code).Msg("Upstream connection ended")
			s.terminate(code, reason)
			return
		}

		if err := s.client.WriteMessage(mt, data); err != nil {
			s.metrics.RecordSendErrorSwallowed(directionUpstreamToClient)
			s.log.Debug().Err(err).Msg("Dropped upstream frame")
			continue
		}

		binary := mt == websocket.BinaryMessage
		s.upstreamFrames.Add(1)
		if binary {
			s.upstreamBytes.Add(int64(len(data)))
		}
		s.metrics.RecordFrameForwarded(directionUpstreamToClient, len(data), binary)
	}
}

// pumpClient forwards buffered and live client frames to the upstream until
// the client goes away or a guardrail trips.
func (s *Session) pumpClient(frames <-chan frame, readErr <-chan error) {
	for f := range frames {
		if reason := s.limitExceeded(); reason != "" {
			s.log.Warn().Str("reason", reason).Msg("Session limit exceeded")
			s.terminate(websocket.ClosePolicyViolation, reason)
			break
		}
		s.forward(f)
	}

	var err error
	select {
	case err = <-readErr:
	default:
	}

	if err != nil {
		code, reason := closeStatus(err)
		s.terminate(code, reason)
	} else {
		s.terminate(websocket.CloseNormalClosure, "")
	}
}

func (s *Session) forward(f frame) {
	// Binary audio passes through untouched regardless of candidate.
	if f.messageType == websocket.BinaryMessage {
		s.send(f.messageType, f.data, true)
		return
	}

	if !s.candidate.Bidirectional {
		s.send(f.messageType, f.data, false)
		return
	}

	res := s.translator.Translate(f.data)
	if res.Drop {
		s.metrics.RecordMessageDropped(res.Kind)
		return
	}
	s.metrics.RecordControlTranslated(res.Kind)
	s.send(websocket.TextMessage, res.Payload, false)
}

// send is best-effort: a failed write is counted and logged but does not
// tear down the session. A single lost control message is less harmful to a
// realtime stream than a full reconnect.
func (s *Session) send(messageType int, data []byte, binary bool) {
	if err := s.upstreamConn.WriteMessage(messageType, data); err != nil {
		s.metrics.RecordSendErrorSwallowed(directionClientToUpstream)
		s.log.Debug().Err(err).Msg("Dropped client frame")
		return
	}

	s.clientFrames.Add(1)
	if binary {
		s.clientBytes.Add(int64(len(data)))
	}
	s.metrics.RecordFrameForwarded(directionClientToUpstream, len(data), binary)
}

func (s *Session) limitExceeded() string {
	if s.limits.MaxAudioBytes > 0 && s.clientBytes.Load() > s.limits.MaxAudioBytes {
		s.metrics.RecordLimitExceeded("audio_bytes")
		return "audio limit exceeded"
	}
	if s.limits.MaxDuration > 0 && time.Since(s.startedAt) > s.limits.MaxDuration {
		s.metrics.RecordLimitExceeded("duration")
		return "session duration limit exceeded"
	}
	return ""
}

// terminate closes both sockets with the same code/reason, exactly once.
// Safe to call from any goroutine and any phase.
func (s *Session) terminate(code int, reason string) {
	s.closeOnce.Do(func() {
		s.lifecycle.Terminate()

		s.mu.Lock()
		s.closeCode = code
		s.closeReason = reason
		s.mu.Unlock()

		s.log.Info().
			Int("closeCode", code).
			Str("closeReason", reason).
			Msg("Session terminating")

		if s.upstreamConn != nil {
			s.upstreamConn.WriteClose(code, reason)
			s.upstreamConn.Close()
		}
		s.client.WriteClose(code, reason)
		s.client.Close()

		if s.cancel != nil {
			s.cancel()
		}
	})
}

func (s *Session) finish() {
	s.mu.Lock()
	code, reason := s.closeCode, s.closeReason
	s.mu.Unlock()

	duration := time.Since(s.startedAt)
	success := code == websocket.CloseNormalClosure || code == websocket.CloseGoingAway
	s.metrics.RecordSessionEnd(success, duration.Seconds())
	s.publishEnded(code, reason, duration)

	s.log.Info().
		Int("closeCode", code).
		Int64("clientFrames", s.clientFrames.Load()).
		Int64("upstreamFrames", s.upstreamFrames.Load()).
		Int64("clientBytes", s.clientBytes.Load()).
		Int64("upstreamBytes", s.upstreamBytes.Load()).
		Dur("duration", duration).
		Msg("Session ended")
}

func (s *Session) publishStarted() {
	if s.publisher == nil {
		return
	}

	ev := models.SessionStarted{
		EventType:  eventSessionStarted,
		SessionID:  s.id,
		Model:      s.model,
		Endpoint:   s.candidate.Name,
		RemoteAddr: s.remoteAddr,
		Timestamp:  time.Now().UnixMilli(),
	}
	if err := s.validator.Validate(ev); err != nil {
		s.log.Error().Err(err).Msg("Invalid session started event")
		return
	}
	s.publisher.PublishStarted(context.Background(), s.id, ev)
}

func (s *Session) publishEnded(code int, reason string, duration time.Duration) {
	if s.publisher == nil {
		return
	}

	ev := models.SessionEnded{
		EventType:      eventSessionEnded,
		SessionID:      s.id,
		Model:          s.model,
		Endpoint:       s.candidate.Name,
		CloseCode:      code,
		CloseReason:    reason,
		ClientFrames:   s.clientFrames.Load(),
		UpstreamFrames: s.upstreamFrames.Load(),
		ClientBytes:    s.clientBytes.Load(),
		UpstreamBytes:  s.upstreamBytes.Load(),
		DurationMs:     duration.Milliseconds(),
		Timestamp:      time.Now().UnixMilli(),
	}
	if err := s.validator.Validate(ev); err != nil {
		s.log.Error().Err(err).Msg("Invalid session ended event")
		return
	}
	s.publisher.PublishEnded(context.Background(), s.id, ev)
}

// closeStatus maps a read error to the code/reason mirrored to the peer.
// Status codes that cannot legally be echoed in a close frame collapse to a
// normal closure.
func closeStatus(err error) (int, string) {
	var ce *websocket.CloseError
	if stderrors.As(err, &ce) {
		switch ce.Code {
		case websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure:
			return websocket.CloseNormalClosure, ""
		}
		return ce.Code, ce.Text
	}
	return websocket.CloseInternalServerErr, "relay error"
}
