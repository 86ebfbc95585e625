package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mongeu/internal/server/api"
	"mongeu/internal/server/campaign"
	"mongeu/internal/server/device"
)

type Config struct {
	ListenAddr     string
	Devices        int
	OneshotEnabled bool
	OneshotDefault time.Duration
	GCMinAge       time.Duration
	GCMinCampaigns int
}

type Server struct {
	httpServer *http.Server
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.Devices <= 0 {
		cfg.Devices = 2
	}

	devices := device.NewSet(cfg.Devices)
	campaigns := campaign.NewRegistry(cfg.GCMinAge, cfg.GCMinCampaigns)

	router := gin.New()
	router.Use(gin.Recovery())

	h := api.NewHandlers(devices, campaigns, cfg.OneshotEnabled, cfg.OneshotDefault)
	v1 := router.Group("/v1")
	{
		v1.GET("/ping", h.Ping)
		v1.GET("/health", h.Health)
		v1.GET("/energy", h.Oneshot)
		v1.POST("/energy", h.CreateCampaign)
		v1.GET("/energy/:id", h.GetCampaign)
		v1.DELETE("/energy/:id", h.DeleteCampaign)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
