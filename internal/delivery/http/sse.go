package http

import (
	"encoding/json"
	"fmt"
	"iter"
	"net/http"

	"github.com/gin-gonic/gin"
)

type contentEvent struct {
	Content string `json:"content"`
}

type errorEvent struct {
	Error string `json:"error"`
}

// streamEvents relays fragments as server-sent events. Once the first byte is
// written the status is fixed at 200, so a failing stream ends with an error event.
func (h *Handler) streamEvents(c *gin.Context, sessionID string, stream iter.Seq2[string, error]) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	fragments := 0
	for part, err := range stream {
		if err != nil {
			if writeErr := writeEvent(c, errorEvent{Error: err.Error()}); writeErr != nil {
				h.logger.Warn().Err(writeErr).Str("session_id", sessionID).Msg("failed to write SSE error event")
			}
			return
		}

		if err := writeEvent(c, contentEvent{Content: part}); err != nil {
			h.logger.Info().Err(err).Str("session_id", sessionID).Int("fragments", fragments).Msg("client disconnected")
			return
		}
		fragments++
	}

	h.logger.Debug().Str("session_id", sessionID).Int("fragments", fragments).Msg("stream complete")
}

// writeEvent writes one "data: <json>" frame and flushes it
func writeEvent(c *gin.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return c.Request.Context().Err()
}
