package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dimasprakoso/catatduit/internal/inbound"
	"github.com/dimasprakoso/catatduit/internal/messages"
	"github.com/dimasprakoso/catatduit/types"
)

func (s *Server) handleInbound(c *gin.Context) {
	var payload inbound.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, inbound.ReplyBody{ReplyText: messages.InvalidPayload()})
		return
	}

	result, err := s.processor.Process(c.Request.Context(), payload)
	if err != nil {
		s.log.Error().Err(err).Str("wa_number", payload.WaNumber).Msg("inbound processing failed")
		c.JSON(http.StatusInternalServerError, inbound.ReplyBody{ReplyText: messages.GenericFallback()})
		return
	}
	c.JSON(result.Status, result.Body)
}

type outboundItem struct {
	ID          string `json:"id"`
	WaNumber    string `json:"waNumber"`
	MessageText string `json:"messageText"`
}

func (s *Server) handleClaimOutbound(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 20 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
			return
		}
		limit = parsed
	}

	claimed, err := s.outbound.ClaimPendingOutboundMessages(c.Request.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to claim outbound messages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim messages"})
		return
	}

	items := make([]outboundItem, len(claimed))
	for i, m := range claimed {
		items[i] = outboundItem{ID: m.ID, WaNumber: m.WaNumber, MessageText: m.MessageText}
	}
	c.JSON(http.StatusOK, gin.H{"messages": items})
}

type ackRequest struct {
	ID           string `json:"id" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=SENT FAILED"`
	ErrorMessage string `json:"errorMessage" validate:"max=191"`
}

func (s *Server) handleAckOutbound(c *gin.Context) {
	var req ackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	err := s.outbound.AckOutboundMessage(c.Request.Context(), req.ID, types.OutboundStatus(req.Status), req.ErrorMessage)
	if err != nil {
		s.log.Error().Err(err).Str("id", req.ID).Msg("failed to ack outbound message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ack message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type heartbeatRequest struct {
	ServiceName string `json:"serviceName" validate:"omitempty,min=2"`
}

func (s *Server) handleHeartbeat(c *gin.Context) {
	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		return
	}
	if req.ServiceName == "" {
		req.ServiceName = "bot"
	}
	if err := s.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		return
	}

	if err := s.heartbeats.UpsertHeartbeat(c.Request.Context(), req.ServiceName); err != nil {
		s.log.Error().Err(err).Msg("failed to upsert heartbeat")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleHealth(c *gin.Context) {
	hb, err := s.heartbeats.GetHeartbeat(c.Request.Context(), "bot")
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read heartbeat")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Health check failed"})
		return
	}

	status := "down"
	var lastSeen *string
	if hb != nil {
		seen := hb.LastSeenAt.UTC().Format(time.RFC3339)
		lastSeen = &seen
		if s.now().Sub(hb.LastSeenAt) > s.staleAfter {
			status = "stale"
		} else {
			status = "healthy"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"botHeartbeat": gin.H{"status": status, "lastSeenAt": lastSeen},
		"checkedAt":    s.now().UTC().Format(time.RFC3339),
	})
}
