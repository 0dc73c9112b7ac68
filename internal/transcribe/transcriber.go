// Package transcribe turns recorded speech into text.
//
// Transcription is an external collaborator. A failed attempt is reported
// to the caller as an error and has no other effect; in particular no
// interaction is logged and no search is run for it.
package transcribe

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means no speech-to-text backend is available.
	ErrNotConfigured = errors.New("transcription is not configured")

	// ErrEmptyAudio means the caller sent no audio bytes.
	ErrEmptyAudio = errors.New("audio is empty")

	// ErrEmptyTranscript means the backend heard nothing it could transcribe.
	ErrEmptyTranscript = errors.New("transcript is empty")
)

// Audio is one recorded clip.
type Audio struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("transcription failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("transcription failed with status %d: %s", e.StatusCode, e.Message)
}

// Disabled is a Transcriber that always returns ErrNotConfigured.
type Disabled struct{}

// Transcribe implements Transcriber.
func (Disabled) Transcribe(context.Context, Audio) (string, error) {
	return "", ErrNotConfigured
}
