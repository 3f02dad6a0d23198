package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

// Stream audio in chunks to simulate real-time capture
// At 16kHz 16-bit mono = 32000 bytes/second
// 100ms chunks = 3200 bytes
const chunkSize = 3200
const chunkIntervalMs = 100

func main() {
	audioFile := flag.String("audio", "../../testdata/sample-16khz.wav", "Path to WAV file (16kHz 16-bit mono)")
	relayAddr := flag.String("relay", "localhost:8080", "Relay server address")
	model := flag.String("model", "", "Model name (empty = relay default)")
	apiKey := flag.String("key", "", "API key (empty = relay service credential)")
	flag.Parse()

	// Open audio file
	f, err := os.Open(*audioFile)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	// Read and validate WAV header
	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		log.Fatalf("Failed to read WAV header: %v", err)
	}

	// Validate it's a WAV file
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Fatal("Not a valid WAV file")
	}

	// Extract audio format info
	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Printf("WAV file: format=%d channels=%d sampleRate=%d bitsPerSample=%d",
		audioFormat, numChannels, sampleRate, bitsPerSample)

	if audioFormat != 1 { // PCM
		log.Fatal("Only PCM format supported")
	}
	if sampleRate != 16000 {
		log.Printf("Warning: Sample rate is %d Hz, expected 16000 Hz", sampleRate)
	}

	// Connect to the relay
	q := url.Values{}
	if *model != "" {
		q.Set("model", *model)
	}
	if *apiKey != "" {
		q.Set("key", *apiKey)
	}
	u := url.URL{Scheme: "ws", Host: *relayAddr, Path: "/v1/live", RawQuery: q.Encode()}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("Connected to %s", u.String())

	// Print everything the relay sends back
	responses := make(chan struct{})
	go func() {
		defer close(responses)
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				if ce, ok := err.(*websocket.CloseError); ok {
					log.Printf("Relay closed the session: code=%d reason=%q", ce.Code, ce.Text)
				} else {
					log.Printf("Read error: %v", err)
				}
				return
			}
			if mt == websocket.BinaryMessage {
				log.Printf("<- %d bytes of audio", len(data))
				continue
			}
			log.Printf("<- %s", data)
		}
	}()

	start, _ := json.Marshal(map[string]any{"type": "session.start"})
	if err := conn.WriteMessage(websocket.TextMessage, start); err != nil {
		log.Fatalf("Failed to send session.start: %v", err)
	}

	// Stream audio in chunks
	audioChunk := make([]byte, chunkSize)
	var totalBytes int64
	var chunkNum int
	startTime := time.Now()

	for {
		n, err := f.Read(audioChunk)
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read audio: %v", err)
		}

		chunkNum++
		totalBytes += int64(n)

		if err := conn.WriteMessage(websocket.BinaryMessage, audioChunk[:n]); err != nil {
			log.Fatalf("Failed to send chunk: %v", err)
		}

		if chunkNum%10 == 0 {
			log.Printf("-> chunk %d (%d bytes total)", chunkNum, totalBytes)
		}

		// Simulate real-time capture
		time.Sleep(chunkIntervalMs * time.Millisecond)
	}

	elapsed := time.Since(startTime)
	log.Printf("Finished streaming: %d chunks, %d bytes in %v", chunkNum, totalBytes, elapsed)

	// Ask the model to respond, then give it a moment before hanging up
	commit, _ := json.Marshal(map[string]any{"type": "input_audio_buffer.commit"})
	if err := conn.WriteMessage(websocket.TextMessage, commit); err != nil {
		log.Fatalf("Failed to send commit: %v", err)
	}

	log.Println("Waiting for model responses...")
	select {
	case <-responses:
	case <-time.After(15 * time.Second):
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	select {
	case <-responses:
	case <-time.After(2 * time.Second):
	}
	log.Println("Session completed")
}
