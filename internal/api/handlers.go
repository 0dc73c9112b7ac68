package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/khanglvm/describo/internal/app"
	"github.com/khanglvm/describo/internal/transcribe"
)

type searchRequest struct {
	Query     string `json:"query"`
	InputType string `json:"input_type"`
}

type interactionRequest struct {
	Action   string         `json:"action"`
	Metadata map[string]any `json:"metadata"`
}

type viewRequest struct {
	Rank int `json:"rank"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"products": s.svc.Catalog().Len(),
		"sessions": s.svc.ActiveSessions(),
	})
}

func (s *Server) listCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": s.svc.Catalog().Products()})
}

func (s *Server) listExamples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"examples": s.svc.Examples()})
}

func (s *Server) startSession(c *gin.Context) {
	c.JSON(http.StatusCreated, s.svc.StartSession())
}

func (s *Server) endSession(c *gin.Context) {
	if err := s.svc.EndSession(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	resp, err := s.svc.Search(c.Param("id"), req.Query, req.InputType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) recordInteraction(c *gin.Context) {
	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	view, err := s.svc.Record(c.Param("id"), req.Action, req.Metadata)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) useExample(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "example index must be a number")
		return
	}
	query, err := s.svc.UseExample(c.Param("id"), index)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query})
}

func (s *Server) viewProduct(c *gin.Context) {
	var req viewRequest
	// The body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid JSON body")
			return
		}
	}
	p, err := s.svc.ViewProduct(c.Param("id"), c.Param("productID"), req.Rank)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) trust(c *gin.Context) {
	view, err := s.svc.Trust(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) transcribe(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxAudioBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "audio too large"})
			return
		}
		badRequest(c, "failed to read audio")
		return
	}

	audio := transcribe.Audio{
		Data:        data,
		ContentType: c.ContentType(),
		Filename:    audioFilename(c.ContentType()),
	}
	text, err := s.svc.Transcribe(c.Request.Context(), c.Param("id"), audio)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (s *Server) checkout(c *gin.Context) {
	view, err := s.svc.Checkout(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// writeError maps service errors to status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrEmptyAction),
		errors.Is(err, app.ErrInvalidInputType),
		errors.Is(err, app.ErrUnknownExample),
		errors.Is(err, transcribe.ErrEmptyAudio):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrUnknownProduct):
		status = http.StatusNotFound
	case errors.Is(err, transcribe.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, transcribe.ErrEmptyTranscript):
		status = http.StatusUnprocessableEntity
	case isTranscriptionFailure(err):
		status = http.StatusBadGateway
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func isTranscriptionFailure(err error) bool {
	var statusErr *transcribe.StatusError
	return errors.As(err, &statusErr) || strings.HasPrefix(err.Error(), "transcribe:")
}

func audioFilename(contentType string) string {
	switch {
	case strings.Contains(contentType, "webm"):
		return "audio.webm"
	case strings.Contains(contentType, "ogg"):
		return "audio.ogg"
	case strings.Contains(contentType, "mpeg"), strings.Contains(contentType, "mp3"):
		return "audio.mp3"
	case strings.Contains(contentType, "mp4"), strings.Contains(contentType, "m4a"):
		return "audio.m4a"
	case strings.Contains(contentType, "flac"):
		return "audio.flac"
	default:
		return "audio.wav"
	}
}
