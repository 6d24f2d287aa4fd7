// Package server exposes the menu, the promotion feed and the live signage
// screen over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"menuboard/internal"
	"menuboard/internal/config"
	"menuboard/internal/logging"
	"menuboard/internal/pipeline"
	"menuboard/internal/qr"
	"menuboard/internal/signage"
)

// Screen is the live signage state. *signage.Service implements it.
type Screen interface {
	Snapshot() signage.Snapshot
	Feed() pipeline.Feed
	Links() []qr.Link
	Refresh(ctx context.Context) error
	Subscribe(fn func(signage.Snapshot)) (cancel func())
}

// RunLog is the fetch-cycle history. *pipeline.ProcessingService
// implements it.
type RunLog interface {
	RecentRuns(limit int) ([]internal.RunRecord, error)
	Generation() uint64
}

type Server struct {
	router *gin.Engine
	screen Screen
	runs   RunLog
	hub    *wsHub
	log    *zap.Logger
	cfg    config.Config

	unsubscribe func()
}

func New(cfg config.Config, screen Screen, runs RunLog, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	log = logging.OrNop(log)

	s := &Server{
		router: gin.New(),
		screen: screen,
		runs:   runs,
		hub:    newWSHub(log),
		log:    log,
		cfg:    cfg,
	}
	s.router.Use(gin.Recovery(), s.accessLog())
	s.setupRoutes()
	s.unsubscribe = screen.Subscribe(func(snap signage.Snapshot) {
		s.hub.Broadcast(wsMessage{Type: "snapshot", Snapshot: snap})
	})
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("http listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops broadcasting and disconnects every display.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.hub.Close()
}

type wsMessage struct {
	Type     string           `json:"type"`
	Snapshot signage.Snapshot `json:"snapshot"`
}

func (s *Server) setupRoutes() {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/menu", s.handleMenu)
		api.GET("/menu.xlsx", s.handleMenuXLSX)
		api.GET("/promos", s.handlePromos)
		api.GET("/signage", s.handleSignage)
		api.GET("/links", s.handleLinks)
		api.GET("/runs", s.handleRuns)
		api.POST("/refresh", s.handleRefresh)
	}

	s.router.GET("/ws/signage", s.handleWebsocket)

	if dir := strings.TrimSpace(s.cfg.StaticDir); dir != "" {
		files := http.FileServer(http.Dir(dir))
		s.router.NoRoute(gin.WrapH(files))
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.screen.Snapshot()
	var started uint64
	if s.runs != nil {
		started = s.runs.Generation()
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"status":     snap.Status.Kind,
		"generation": snap.Generation,
		"started":    started,
		"displays":   s.hub.Len(),
	})
}

func (s *Server) handleMenu(c *gin.Context) {
	c.JSON(http.StatusOK, pipeline.NewMenuDocument(s.screen.Feed()))
}

func (s *Server) handleMenuXLSX(c *gin.Context) {
	data, err := pipeline.MenuXLSX(s.screen.Feed())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="menu.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (s *Server) handlePromos(c *gin.Context) {
	feed := s.screen.Feed()
	cards := make([]pipeline.PromoCard, 0, len(feed.Promotions))
	for _, it := range feed.Promotions {
		cards = append(cards, pipeline.NewPromoCard(it))
	}
	c.JSON(http.StatusOK, gin.H{"generation": feed.Generation, "promotions": cards})
}

func (s *Server) handleSignage(c *gin.Context) {
	c.JSON(http.StatusOK, s.screen.Snapshot())
}

func (s *Server) handleLinks(c *gin.Context) {
	links := s.screen.Links()
	if links == nil {
		links = []qr.Link{}
	}
	c.JSON(http.StatusOK, links)
}

func (s *Server) handleRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusOK, []internal.RunRecord{})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	runs, err := s.runs.RecentRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []internal.RunRecord{}
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) handleRefresh(c *gin.Context) {
	err := s.screen.Refresh(c.Request.Context())
	snap := s.screen.Snapshot()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   err.Error(),
			"failure": internal.Classify(err),
			"status":  snap.Status,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": snap.Status, "generation": snap.Generation})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.log.Info("display connected", zap.String("remote", c.Request.RemoteAddr))
	client := s.hub.Add(conn, wsMessage{Type: "snapshot", Snapshot: s.screen.Snapshot()})
	go s.hub.readLoop(client)
}
