package volcengine

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"the-voice/internal/infra"
)

// LegacyTTSClient talks to the v1 batch synthesis endpoint. Requests are
// authenticated with an HMAC-SHA256 signature of the body; the response is
// a single JSON document with base64 MP3 audio. The batch generator uses
// this endpoint since it wants a compressed file, not a PCM stream.
type LegacyTTSClient struct {
	url        string
	appID      string
	accessKey  string
	secretKey  string
	cluster    string
	voice      string
	httpClient *http.Client

	SpeedRatio  float64
	PitchRatio  float64
	VolumeRatio float64
}

func NewLegacyTTSClient(url, appID, accessKey, secretKey, cluster, voice string) *LegacyTTSClient {
	return &LegacyTTSClient{
		url:         url,
		appID:       appID,
		accessKey:   accessKey,
		secretKey:   secretKey,
		cluster:     cluster,
		voice:       voice,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		SpeedRatio:  0.9,
		PitchRatio:  0.95,
		VolumeRatio: 1.0,
	}
}

type legacyRequest struct {
	App     legacyApp     `json:"app"`
	User    legacyUser    `json:"user"`
	Audio   legacyAudio   `json:"audio"`
	Request legacyPayload `json:"request"`
}

type legacyApp struct {
	AppID   string `json:"appid"`
	Token   string `json:"token"`
	Cluster string `json:"cluster"`
}

type legacyUser struct {
	UID string `json:"uid"`
}

type legacyAudio struct {
	VoiceType   string  `json:"voice_type"`
	Encoding    string  `json:"encoding"`
	SpeedRatio  float64 `json:"speed_ratio"`
	PitchRatio  float64 `json:"pitch_ratio"`
	VolumeRatio float64 `json:"volume_ratio"`
}

type legacyPayload struct {
	ReqID     string `json:"reqid"`
	Text      string `json:"text"`
	TextType  string `json:"text_type"`
	Operation string `json:"operation"`
}

type legacyResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

// Synthesize returns MP3 audio for text.
func (c *LegacyTTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	textType := "plain"
	if strings.HasPrefix(strings.TrimSpace(text), "<speak>") {
		textType = "ssml"
	}

	reqBody := legacyRequest{
		App:  legacyApp{AppID: c.appID, Token: c.accessKey, Cluster: c.cluster},
		User: legacyUser{UID: "the-voice"},
		Audio: legacyAudio{
			VoiceType:   c.voice,
			Encoding:    "mp3",
			SpeedRatio:  c.SpeedRatio,
			PitchRatio:  c.PitchRatio,
			VolumeRatio: c.VolumeRatio,
		},
		Request: legacyPayload{
			ReqID:     uuid.NewString(),
			Text:      text,
			TextType:  textType,
			Operation: "query",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var result legacyResponse
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "HMAC-SHA256 "+signBody(bodyBytes, c.secretKey))

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("tts API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("tts API error %d: %s", resp.StatusCode, string(respBody))
		}

		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	if result.Data == "" {
		return nil, fmt.Errorf("tts failed: code %d, %s", result.Code, result.Message)
	}

	audio, err := base64.StdEncoding.DecodeString(result.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding audio: %w", err)
	}

	return audio, nil
}

func signBody(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
