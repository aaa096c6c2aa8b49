package volcengine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"the-voice/internal/infra/audio"
)

// ASRClient streams PCM to the BigModel recognition websocket and collects
// partial transcripts until the service has seen the whole utterance.
type ASRClient struct {
	url        string
	appID      string
	accessKey  string
	resourceID string
	language   string
	dialer     *websocket.Dialer
	chunkDur   time.Duration
	finalWait  time.Duration
}

func NewASRClient(url, appID, accessKey, resourceID, language string) *ASRClient {
	return &ASRClient{
		url:        url,
		appID:      appID,
		accessKey:  accessKey,
		resourceID: resourceID,
		language:   language,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		chunkDur:   200 * time.Millisecond,
		finalWait:  10 * time.Second,
	}
}

type asrConfig struct {
	Audio struct {
		Format   string `json:"format"`
		Rate     int    `json:"rate"`
		Language string `json:"language"`
	} `json:"audio"`
	Request struct {
		EnablePunc bool `json:"enable_punc"`
	} `json:"request"`
}

type asrResult struct {
	Text   string `json:"text"`
	Result struct {
		Text string `json:"text"`
	} `json:"result"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (r asrResult) transcript() string {
	if r.Text != "" {
		return r.Text
	}
	return r.Result.Text
}

func (c *ASRClient) Transcribe(ctx context.Context, wav []byte, onPartial func(string)) (string, error) {
	samples, sampleRate, err := audio.DecodeWAV(wav)
	if err != nil {
		return "", fmt.Errorf("decoding utterance: %w", err)
	}
	pcm := audio.Int16sToBytes(samples)

	header := http.Header{}
	header.Set("X-Api-App-Key", c.appID)
	header.Set("X-Api-Access-Key", c.accessKey)
	header.Set("X-Api-Resource-Id", c.resourceID)
	header.Set("X-Api-Connect-Id", uuid.NewString())

	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		if resp != nil {
			return "", fmt.Errorf("dialing recognition service: %w (status %d)", err, resp.StatusCode)
		}
		return "", fmt.Errorf("dialing recognition service: %w", err)
	}
	defer conn.Close()

	var cfg asrConfig
	cfg.Audio.Format = "pcm"
	cfg.Audio.Rate = sampleRate
	cfg.Audio.Language = c.language
	cfg.Request.EnablePunc = true

	cfgPayload, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, MarshalFrame(Frame{
		Type:    MsgFullRequest,
		Flags:   FlagNone,
		Payload: cfgPayload,
	})); err != nil {
		return "", fmt.Errorf("sending config frame: %w", err)
	}

	// Reader runs alongside the chunk writer so partials surface while the
	// utterance is still being streamed. The latest transcript is kept in a
	// shared slot because some deployments deliver the final result and then
	// hold the connection open instead of closing it.
	var mu sync.Mutex
	var lastText string
	setText := func(t string) { mu.Lock(); lastText = t; mu.Unlock() }
	getText := func() string { mu.Lock(); defer mu.Unlock(); return lastText }

	results := make(chan string)
	readerDone := make(chan error, 1)

	go func() {
		var readErr error
		defer func() { readerDone <- readErr }()
		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					readErr = err
				}
				return
			}

			var result asrResult
			switch msgType {
			case websocket.BinaryMessage:
				frame, err := UnmarshalFrame(msg)
				if err != nil {
					continue
				}
				if frame.Type == MsgErrorResponse {
					readErr = fmt.Errorf("recognition error: %s", frame.Payload)
					return
				}
				if err := json.Unmarshal(frame.Payload, &result); err != nil {
					continue
				}
			case websocket.TextMessage:
				if err := json.Unmarshal(msg, &result); err != nil {
					continue
				}
			default:
				continue
			}

			if result.Code > 0 {
				readErr = fmt.Errorf("recognition error %d: %s", result.Code, result.Message)
				return
			}

			if text := result.transcript(); text != "" {
				setText(text)
				select {
				case results <- text:
				default:
				}
			}
		}
	}()

	chunkSize := int(float64(sampleRate) * 2 * c.chunkDur.Seconds())
	seq := int32(1)

	for i := 0; i < len(pcm); i += chunkSize {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case text := <-results:
			if onPartial != nil {
				onPartial(text)
			}
		default:
		}

		end := i + chunkSize
		if end > len(pcm) {
			end = len(pcm)
		}

		if err := conn.WriteMessage(websocket.BinaryMessage, MarshalFrame(Frame{
			Type:    MsgAudioRequest,
			Flags:   FlagSeq,
			Seq:     seq,
			HasSeq:  true,
			Payload: pcm[i:end],
		})); err != nil {
			return "", fmt.Errorf("sending audio chunk: %w", err)
		}
		seq++
	}

	// Negated sequence tells the service the utterance is complete.
	if err := conn.WriteMessage(websocket.BinaryMessage, MarshalFrame(Frame{
		Type:   MsgAudioRequest,
		Flags:  FlagLastSeq,
		Seq:    -seq,
		HasSeq: true,
	})); err != nil {
		return "", fmt.Errorf("sending final frame: %w", err)
	}

	timeout := time.NewTimer(c.finalWait)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case text := <-results:
			if onPartial != nil {
				onPartial(text)
			}
		case readErr := <-readerDone:
			if readErr != nil {
				return "", fmt.Errorf("reading recognition results: %w", readErr)
			}
			return strings.TrimSpace(getText()), nil
		case <-timeout.C:
			// The service already sent its last result but left the
			// connection up. Whatever arrived is the transcript.
			if text := getText(); text != "" {
				return strings.TrimSpace(text), nil
			}
			return "", fmt.Errorf("timed out waiting for final transcript")
		}
	}
}
