package audio_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"the-voice/internal/domain"
	"the-voice/internal/infra/audio"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPSource_ReceiveUtterance(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}
	defer source.Stop()

	testAudio := []byte("fake wav bytes")

	go func() {
		time.Sleep(100 * time.Millisecond)
		source.Inject(testAudio)
	}()

	received, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("receiving utterance: %v", err)
	}

	if !bytes.Equal(received, testAudio) {
		t.Errorf("utterance mismatch: got %d bytes, want %d bytes", len(received), len(testAudio))
	}
}

func TestHTTPSource_UtteranceEndpoint(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())
	handler := source.Handler()

	req := httptest.NewRequest(http.MethodPost, "/utterance", bytes.NewReader([]byte("wav data")))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusAccepted)
	}
}

func TestHTTPSource_TextEndpointMarksTextTurn(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())
	handler := source.Handler()

	req := httptest.NewRequest(http.MethodPost, "/text", bytes.NewReader([]byte("a typed thought")))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status code: got %d, want %d", rec.Code, http.StatusAccepted)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	utterance, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("receiving utterance: %v", err)
	}

	text, isText := domain.TextUtterance(utterance)
	if !isText || text != "a typed thought" {
		t.Errorf("text turn: got %q (isText=%v)", text, isText)
	}
}

func TestHTTPSource_AuthToken(t *testing.T) {
	authToken := "test-secret-token-123"
	source := audio.NewHTTPSource(":0", authToken, discardLogger())
	handler := source.Handler()

	tests := []struct {
		name       string
		token      string
		viaQuery   bool
		wantStatus int
	}{
		{name: "valid token in header", token: authToken, wantStatus: http.StatusAccepted},
		{name: "valid token in query", token: authToken, viaQuery: true, wantStatus: http.StatusAccepted},
		{name: "invalid token", token: "wrong-token", wantStatus: http.StatusUnauthorized},
		{name: "missing token", token: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := bytes.NewReader([]byte("hello"))
			var req *http.Request
			if tt.viaQuery {
				req = httptest.NewRequest(http.MethodPost, "/text?token="+tt.token, body)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/text", body)
				if tt.token != "" {
					req.Header.Set("X-Auth-Token", tt.token)
				}
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status code: got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestFileSource_PicksUpFiles(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "turn1.wav"), []byte("RIFF....WAVEfmt fake"), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "turn2.txt"), []byte("typed turn"), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	source := audio.NewFileSource(tmpDir)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	sawText := false
	sawAudio := false
	for i := 0; i < 2; i++ {
		data, err := source.NextUtterance(ctx)
		if err != nil {
			t.Fatalf("reading utterance %d: %v", i, err)
		}
		if _, isText := domain.TextUtterance(data); isText {
			sawText = true
		} else {
			sawAudio = true
		}
	}

	if !sawText || !sawAudio {
		t.Errorf("expected one text and one audio turn, got text=%v audio=%v", sawText, sawAudio)
	}
}
