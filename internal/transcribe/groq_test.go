package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroqServer(t *testing.T, handler http.HandlerFunc) *GroqClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGroqClient(GroqConfig{APIKey: "test-key", BaseURL: srv.URL + "/"})
}

func TestGroqClient_SendsWhisperRequest(t *testing.T) {
	client := newGroqServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-large-v3", r.FormValue("model"))
		assert.Equal(t, "json", r.FormValue("response_format"))
		assert.Equal(t, "en", r.FormValue("language"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "clip.webm", hdr.Filename)
		assert.Equal(t, "audio/webm", hdr.Header.Get("Content-Type"))
		assert.Equal(t, []byte("RIFFdata"), data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  light that goes on your head  ","x_groq":{"id":"req_1"}}`))
	})

	text, err := client.Transcribe(context.Background(), Audio{
		Data:        []byte("RIFFdata"),
		Filename:    "clip.webm",
		ContentType: "audio/webm",
	})
	require.NoError(t, err)
	assert.Equal(t, "light that goes on your head", text)
}

func TestGroqClient_StatusError(t *testing.T) {
	client := newGroqServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	})

	_, err := client.Transcribe(context.Background(), Audio{Data: []byte("x")})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "Invalid API Key", statusErr.Message)
	assert.Contains(t, err.Error(), "401")
}

func TestGroqClient_PlainTextErrorBody(t *testing.T) {
	client := newGroqServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})

	_, err := client.Transcribe(context.Background(), Audio{Data: []byte("x")})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "upstream unavailable", statusErr.Message)
}

func TestGroqClient_EmptyTranscript(t *testing.T) {
	client := newGroqServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"   "}`))
	})

	_, err := client.Transcribe(context.Background(), Audio{Data: []byte("x")})
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestGroqClient_InvalidJSON(t *testing.T) {
	client := newGroqServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.Transcribe(context.Background(), Audio{Data: []byte("x")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyTranscript)
}

func TestGroqClient_EmptyAudioSkipsRequest(t *testing.T) {
	called := false
	client := newGroqServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Transcribe(context.Background(), Audio{})
	assert.ErrorIs(t, err, ErrEmptyAudio)
	assert.False(t, called)
}

func TestGroqClient_ContextCancelled(t *testing.T) {
	client := newGroqServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Transcribe(ctx, Audio{Data: []byte("x")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNew(t *testing.T) {
	_, isDisabled := New(GroqConfig{APIKey: "  "}).(Disabled)
	assert.True(t, isDisabled)

	_, err := Disabled{}.Transcribe(context.Background(), Audio{Data: []byte("x")})
	assert.ErrorIs(t, err, ErrNotConfigured)

	client, ok := New(GroqConfig{APIKey: "k"}).(*GroqClient)
	require.True(t, ok)
	assert.Equal(t, DefaultBaseURL+"/openai/v1/audio/transcriptions", client.endpoint)
	assert.Equal(t, DefaultModel, client.model)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)

	_, err = NewGroqClient(GroqConfig{}).Transcribe(context.Background(), Audio{Data: []byte("x")})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
