package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"market-dashboard/src/feed"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/projection"
	"market-dashboard/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

const shutdownTimeout = 5 * time.Second

// FeedStatus is the read side of the subscription manager used by health.
type FeedStatus interface {
	Connected() bool
	Stats() feed.Stats
}

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

// DashboardServer serves projected views over HTTP and pushes them to
// websocket clients. It implements interfaces.IViewPublisher.
type DashboardServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	History   interfaces.IHistoryStore
	Identity  interfaces.IIdentityProvider
	Feed      FeedStatus
	Scheduler *utils.MarketScheduler
	Charts    *ChartRegistry

	engine     *gin.Engine
	httpServer *http.Server
	now        func() time.Time

	// WebSocket clients, owned by the hub loop
	clients     map[*Client]struct{}
	clientCount atomic.Int64
	register    chan *Client
	unregister  chan *Client
	refresh     chan struct{}
	done        chan struct{}
	hubOnce     sync.Once
	stopOnce    sync.Once

	// Local cache
	snapshot   *models.MFeedSnapshot
	user       *models.MUser
	stateMutex sync.RWMutex
}

var _ interfaces.IViewPublisher = (*DashboardServer)(nil)

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewDashboardServer wires the routes. identity, status and scheduler may be
// nil.
func NewDashboardServer(cfg *models.MConfig, store interfaces.IHistoryStore, identity interfaces.IIdentityProvider, status FeedStatus, scheduler *utils.MarketScheduler, log *logger.Logger) *DashboardServer {
	if log == nil {
		log = logger.NewNop()
	}

	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:     cfg,
		Logger:     log,
		History:    store,
		Identity:   identity,
		Feed:       status,
		Scheduler:  scheduler,
		Charts:     NewChartRegistry(),
		engine:     gin.New(),
		now:        time.Now,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		// Coalesces bursts of snapshots into one re-render
		refresh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if identity != nil {
		s.user = identity.Current()
	}

	s.engine.Use(gin.Recovery())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/view", s.getView)
	api.GET("/news", s.getNews)
	api.GET("/chart/:symbol", s.getChart)
	api.GET("/health", s.getHealth)

	session := api.Group("/session")
	session.GET("", s.getSession)
	session.POST("/sign-in", s.signIn)
	session.POST("/sign-out", s.signOut)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the routes, mainly for tests.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and blocks serving HTTP until Stop.
func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting dashboard server on %s", addr)

	s.startHub()

	s.stateMutex.Lock()
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	srv := s.httpServer
	s.stateMutex.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop disconnects every websocket client and shuts the HTTP server down.
func (s *DashboardServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)

		s.stateMutex.RLock()
		srv := s.httpServer
		s.stateMutex.RUnlock()
		if srv == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(ctx)
	})
	return err
}

// -----------------------------------------------------------------------------
// View Publisher
// -----------------------------------------------------------------------------

// Publish replaces the rendered snapshot and re-renders every client.
func (s *DashboardServer) Publish(snapshot *models.MFeedSnapshot) {
	s.stateMutex.Lock()
	s.snapshot = snapshot
	s.stateMutex.Unlock()
	s.requestRefresh()
}

// -----------------------------------------------------------------------------

// IdentityChanged re-renders every client with the new user.
func (s *DashboardServer) IdentityChanged(user *models.MUser) {
	s.stateMutex.Lock()
	s.user = user
	s.stateMutex.Unlock()
	s.requestRefresh()
}

func (s *DashboardServer) requestRefresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// -----------------------------------------------------------------------------
// View Building
// -----------------------------------------------------------------------------

// buildView projects the cached snapshot for tab.
func (s *DashboardServer) buildView(tab models.Category) models.MDashboardView {
	s.stateMutex.RLock()
	snapshot := s.snapshot
	user := s.user
	s.stateMutex.RUnlock()

	now := s.now()
	opts := projection.ViewOptions{
		Tab:              tab,
		Now:              now,
		User:             user,
		DomesticCountry:  s.Config.Dashboard.DomesticCountry,
		DomesticSuffixes: s.Config.Dashboard.DomesticSuffixes,
	}
	if s.Scheduler != nil {
		opts.Session = s.Scheduler.Session(now)
	}
	return projection.BuildDashboardView(snapshot, opts)
}

func (s *DashboardServer) latestSnapshot() *models.MFeedSnapshot {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.snapshot
}
