// Package server exposes the HTTP API: the bot bridge endpoints under
// /api/bot and the public payment endpoints under /api/public.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dimasprakoso/catatduit/internal/inbound"
	"github.com/dimasprakoso/catatduit/internal/messages"
	"github.com/dimasprakoso/catatduit/internal/payment"
	"github.com/dimasprakoso/catatduit/types"
)

type Server struct {
	processor  *inbound.Processor
	outbound   types.OutboundStore
	heartbeats types.HeartbeatStore
	payments   *payment.Service

	botToken   string
	staleAfter time.Duration

	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
}

type Deps struct {
	Processor  *inbound.Processor
	Outbound   types.OutboundStore
	Heartbeats types.HeartbeatStore
	Payments   *payment.Service
	BotToken   string
	StaleAfter time.Duration
	Log        zerolog.Logger
}

func New(d Deps) *Server {
	return &Server{
		processor:  d.Processor,
		outbound:   d.Outbound,
		heartbeats: d.Heartbeats,
		payments:   d.Payments,
		botToken:   d.BotToken,
		staleAfter: d.StaleAfter,
		validate:   validator.New(),
		log:        d.Log,
		now:        time.Now,
	}
}

// Router wires all routes. The bot claim/ack endpoints sit behind the shared
// x-bot-token secret; inbound and heartbeat stay open for the bridge.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	// A panic still has to answer with text the relay can forward to the chat
	// user.
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, inbound.ReplyBody{ReplyText: messages.GenericFallback()})
	}))

	bot := r.Group("/api/bot")
	{
		bot.POST("/inbound", s.handleInbound)
		bot.POST("/heartbeat", s.handleHeartbeat)
		bot.GET("/health", s.handleHealth)

		authed := bot.Group("", s.requireBotToken)
		authed.GET("/outbound", s.handleClaimOutbound)
		authed.POST("/outbound/ack", s.handleAckOutbound)
	}

	public := r.Group("/api/public")
	{
		public.POST("/payment/confirm", s.handlePaymentConfirm)
		public.GET("/payment/session", s.handlePaymentSession)
	}

	return r
}

func (s *Server) requireBotToken(c *gin.Context) {
	if c.GetHeader("x-bot-token") != s.botToken || s.botToken == "" {
		c.AbortWithStatusJSON(401, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}
