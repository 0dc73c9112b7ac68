package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is Groq's API root.
	DefaultBaseURL = "https://api.groq.com"

	// DefaultModel is the Whisper model used for transcription.
	DefaultModel = "whisper-large-v3"

	// DefaultLanguage hints the spoken language to the model.
	DefaultLanguage = "en"

	// DefaultTimeout bounds a single transcription request.
	DefaultTimeout = 30 * time.Second

	transcriptionsPath = "/openai/v1/audio/transcriptions"

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 4 << 10
)

// GroqConfig configures a GroqClient. Zero fields take defaults.
type GroqConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Timeout  time.Duration
}

// GroqClient transcribes audio through Groq's OpenAI-compatible Whisper
// endpoint.
type GroqClient struct {
	apiKey     string
	endpoint   string
	model      string
	language   string
	httpClient *http.Client
}

// NewGroqClient creates a client. It does not contact the API.
func NewGroqClient(cfg GroqConfig) *GroqClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	language := cfg.Language
	if language == "" {
		language = DefaultLanguage
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GroqClient{
		apiKey:     cfg.APIKey,
		endpoint:   baseURL + transcriptionsPath,
		model:      model,
		language:   language,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// New returns a GroqClient when an API key is set, and Disabled otherwise.
func New(cfg GroqConfig) Transcriber {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Disabled{}
	}
	return NewGroqClient(cfg)
}

// Transcribe uploads the clip and returns the trimmed transcript.
func (c *GroqClient) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if len(audio.Data) == 0 {
		return "", ErrEmptyAudio
	}

	body, contentType, err := c.encode(audio)
	if err != nil {
		return "", fmt.Errorf("failed to encode audio: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcription response: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("transcription response is not valid JSON")
	}

	text := strings.TrimSpace(gjson.GetBytes(raw, "text").String())
	if text == "" {
		return "", ErrEmptyTranscript
	}

	log.WithFields(log.Fields{
		"bytes":   len(audio.Data),
		"chars":   len(text),
		"latency": time.Since(start).Round(time.Millisecond),
	}).Debug("audio transcribed")
	return text, nil
}

func (c *GroqClient) encode(audio Audio) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := audio.Filename
	if filename == "" {
		filename = "audio.wav"
	}
	contentType := audio.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"model", c.model},
		{"response_format", "json"},
		{"language", c.language},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
