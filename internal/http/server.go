package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/fiootv/comms-gateway/internal/config"
	"github.com/fiootv/comms-gateway/internal/http/middleware"
	"github.com/fiootv/comms-gateway/internal/logger"
	"github.com/fiootv/comms-gateway/internal/metrics"
	"github.com/fiootv/comms-gateway/internal/model"
	"github.com/fiootv/comms-gateway/internal/repository"
	"github.com/fiootv/comms-gateway/internal/service/inbound"
	"github.com/fiootv/comms-gateway/internal/service/outbound"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client) *Server {
	// repos (MySQL)
	customersRepo := repository.NewCustomersRepository(mysqlDB)
	conversationsRepo := repository.NewConversationsRepository(mysqlDB)
	agentsRepo := repository.NewAgentsRepository(mysqlDB)
	outboxRepo := repository.NewOutboxRepository(mysqlDB)

	// repos (ClickHouse)
	chConvsRepo := repository.NewCHConversationsRepository(clickhouseDB)

	// services
	inboundSvc := inbound.New(customersRepo, conversationsRepo, logger.L())
	outboundSvc := outbound.New(mysqlDB, conversationsRepo, outboxRepo)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// provider callbacks: no auth, the provider retries on non-2xx
	wh := e.Group("/webhooks")
	wh.POST("/sms", inboundWebhookHandler(inboundSvc, webhookRoute{channel: model.ChannelSMS}))
	wh.POST("/whatsapp", inboundWebhookHandler(inboundSvc, webhookRoute{channel: model.ChannelWhatsApp, supportsMedia: true}))
	wh.POST("/messages", inboundWebhookHandler(inboundSvc, webhookRoute{detectChannel: true}))

	// operator API
	authMW := middleware.APIKeyMiddleware(agentsRepo)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:agent:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/messages/send", sendMessageHandler(outboundSvc))
	v1.GET("/reports/conversations", listConversationsHandler(chConvsRepo))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
