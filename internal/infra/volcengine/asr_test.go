package volcengine_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"the-voice/internal/infra/audio"
	"the-voice/internal/infra/volcengine"
)

type asrTestServer struct {
	t *testing.T

	mu         sync.Mutex
	appKey     string
	connectID  string
	configSeen bool
	chunks     int
}

func (s *asrTestServer) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.appKey = r.Header.Get("X-Api-App-Key")
	s.connectID = r.Header.Get("X-Api-Connect-Id")
	s.mu.Unlock()

	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		frame, err := volcengine.UnmarshalFrame(msg)
		if err != nil {
			s.t.Errorf("bad frame from client: %v", err)
			return
		}

		switch frame.Type {
		case volcengine.MsgFullRequest:
			var cfg struct {
				Audio struct {
					Format string `json:"format"`
					Rate   int    `json:"rate"`
				} `json:"audio"`
			}
			if err := json.Unmarshal(frame.Payload, &cfg); err != nil {
				s.t.Errorf("bad config payload: %v", err)
				return
			}
			if cfg.Audio.Format != "pcm" || cfg.Audio.Rate != 16000 {
				s.t.Errorf("config: got %+v", cfg)
			}
			s.mu.Lock()
			s.configSeen = true
			s.mu.Unlock()

		case volcengine.MsgAudioRequest:
			if frame.Flags == volcengine.FlagLastSeq {
				if frame.Seq >= 0 {
					s.t.Errorf("final frame seq should be negative, got %d", frame.Seq)
				}
				s.respond(conn, "hello world")
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				return
			}

			s.mu.Lock()
			s.chunks++
			n := s.chunks
			s.mu.Unlock()
			if n == 1 {
				s.respond(conn, "hello")
			}
		}
	}
}

func (s *asrTestServer) respond(conn *websocket.Conn, text string) {
	payload, _ := json.Marshal(map[string]any{"result": map[string]string{"text": text}})
	frame := volcengine.MarshalFrame(volcengine.Frame{
		Type:    volcengine.MsgFullResponse,
		Payload: payload,
	})
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		s.t.Errorf("writing response: %v", err)
	}
}

func TestASRClient_Transcribe(t *testing.T) {
	ts := &asrTestServer{t: t}
	server := httptest.NewServer(http.HandlerFunc(ts.handler))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client := volcengine.NewASRClient(wsURL, "app-id", "access-key", "resource-id", "en-US")

	// Half a second of silence: enough for a couple of 200ms chunks.
	wav := audio.EncodeWAV(make([]int16, 8000), 16000)

	var partials []string
	text, err := client.Transcribe(context.Background(), wav, func(p string) {
		partials = append(partials, p)
	})
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}

	if text != "hello world" {
		t.Errorf("transcript: got %q, want %q", text, "hello world")
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if !ts.configSeen {
		t.Error("config frame never arrived")
	}
	if ts.chunks < 2 {
		t.Errorf("audio chunks: got %d, want at least 2", ts.chunks)
	}
	if ts.appKey != "app-id" {
		t.Errorf("X-Api-App-Key: got %q", ts.appKey)
	}
	if ts.connectID == "" {
		t.Error("X-Api-Connect-Id missing")
	}
}

func TestASRClient_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frame, err := volcengine.UnmarshalFrame(msg)
			if err != nil {
				return
			}
			if frame.Type == volcengine.MsgAudioRequest {
				payload, _ := json.Marshal(map[string]any{"code": 45000001, "message": "invalid audio"})
				errFrame := volcengine.MarshalFrame(volcengine.Frame{
					Type:    volcengine.MsgFullResponse,
					Payload: payload,
				})
				conn.WriteMessage(websocket.BinaryMessage, errFrame)
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client := volcengine.NewASRClient(wsURL, "app", "key", "res", "en-US")

	wav := audio.EncodeWAV(make([]int16, 4000), 16000)

	if _, err := client.Transcribe(context.Background(), wav, nil); err == nil {
		t.Error("expected error from service failure")
	}
}

func TestASRClient_RejectsBadAudio(t *testing.T) {
	client := volcengine.NewASRClient("ws://127.0.0.1:1", "app", "key", "res", "en-US")

	if _, err := client.Transcribe(context.Background(), []byte("not a wav"), nil); err == nil {
		t.Error("expected decode error before dialing")
	}
}
