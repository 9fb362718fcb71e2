package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dimasprakoso/catatduit/store"
)

type confirmRequest struct {
	Token string `json:"token" validate:"required,min=10"`
}

func (s *Server) handlePaymentConfirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token payload"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token payload"})
		return
	}

	session, err := s.payments.Confirm(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, store.ErrPaymentSessionNotFound) || errors.Is(err, store.ErrPaymentNotPayable) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		s.log.Error().Err(err).Msg("payment confirm failed")
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Payment confirm failed"})
		return
	}

	var paidAt *string
	if session.PaidAt != nil {
		v := session.PaidAt.UTC().Format(time.RFC3339)
		paidAt = &v
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"status": session.Status,
		"paidAt": paidAt,
	})
}

func (s *Server) handlePaymentSession(c *gin.Context) {
	token := c.Query("token")
	if len(token) < 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
		return
	}

	session, user, err := s.payments.SessionByToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, store.ErrPaymentSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment session not found"})
			return
		}
		s.log.Error().Err(err).Msg("payment session lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment session lookup failed"})
		return
	}

	var paidAt *string
	if session.PaidAt != nil {
		v := session.PaidAt.UTC().Format(time.RFC3339)
		paidAt = &v
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     session.Token,
		"status":    session.Status,
		"amount":    session.Amount,
		"waNumber":  user.WaNumber,
		"paidAt":    paidAt,
		"createdAt": session.CreatedAt.UTC().Format(time.RFC3339),
	})
}
