package volcengine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"the-voice/internal/infra"
)

// TTSClient speaks text through the unidirectional synthesis endpoint. The
// response is a stream of JSON lines, each carrying a base64 PCM chunk, a
// sentence marker, or a terminal status code.
type TTSClient struct {
	url        string
	appID      string
	accessKey  string
	resourceID string
	speaker    string
	sampleRate int
	speechRate int
	httpClient *http.Client
}

func NewTTSClient(url, appID, accessKey, resourceID, speaker string, sampleRate, speechRate int) *TTSClient {
	return &TTSClient{
		url:        url,
		appID:      appID,
		accessKey:  accessKey,
		resourceID: resourceID,
		speaker:    speaker,
		sampleRate: sampleRate,
		speechRate: speechRate,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// codeDone is the status the service sends once the full utterance has
// been streamed.
const codeDone = 20000000

type ttsRequest struct {
	ReqParams ttsReqParams `json:"req_params"`
}

type ttsReqParams struct {
	Text        string         `json:"text"`
	Speaker     string         `json:"speaker"`
	AudioParams ttsAudioParams `json:"audio_params"`
}

type ttsAudioParams struct {
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
	SpeechRate int    `json:"speech_rate"`
}

type ttsChunk struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Data     string `json:"data"`
	Sentence any    `json:"sentence"`
}

// Synthesize returns raw PCM16 speech for text.
func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body := ttsRequest{
		ReqParams: ttsReqParams{
			Text:    text,
			Speaker: c.speaker,
			AudioParams: ttsAudioParams{
				Format:     "pcm",
				SampleRate: c.sampleRate,
				SpeechRate: c.speechRate,
			},
		},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var pcm []byte
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Api-App-Id", c.appID)
		req.Header.Set("X-Api-Access-Key", c.accessKey)
		req.Header.Set("X-Api-Resource-Id", c.resourceID)
		req.Header.Set("X-Api-Request-Id", uuid.NewString())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("tts API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("tts API error %d: %s", resp.StatusCode, string(respBody))
		}

		pcm, err = readChunkStream(resp.Body)
		return err
	})

	if retryErr != nil {
		return nil, retryErr
	}

	if len(pcm) == 0 {
		return nil, fmt.Errorf("empty synthesis result")
	}

	return pcm, nil
}

func readChunkStream(r io.Reader) ([]byte, error) {
	var pcm []byte

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk ttsChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, fmt.Errorf("parsing chunk: %w", err)
		}

		switch {
		case chunk.Code == 0 && chunk.Data != "":
			data, err := base64.StdEncoding.DecodeString(chunk.Data)
			if err != nil {
				return nil, fmt.Errorf("decoding audio chunk: %w", err)
			}
			pcm = append(pcm, data...)
		case chunk.Code == 0:
			// sentence boundary marker, nothing to collect
		case chunk.Code == codeDone:
			return pcm, nil
		default:
			return nil, fmt.Errorf("tts error %d: %s", chunk.Code, chunk.Message)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stream: %w", err)
	}

	return pcm, nil
}
