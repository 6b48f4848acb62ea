package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"market-dashboard/src/history"
	"market-dashboard/src/identity"
	"market-dashboard/src/models"
	"market-dashboard/src/projection"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

const chartTimeout = 15 * time.Second

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

// getView returns the whole dashboard for ?tab=. Before the first snapshot it
// is the waiting view, never an error.
func (s *DashboardServer) getView(c *gin.Context) {
	tab, ok := s.tabParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.buildView(tab))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getNews(c *gin.Context) {
	tab, ok := s.tabParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, projection.NewsView(s.latestSnapshot(), tab, s.now()))
}

// -----------------------------------------------------------------------------

// getChart runs one history load to completion.
func (s *DashboardServer) getChart(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		errorResponse(c, http.StatusBadRequest, "symbol is required")
		return
	}
	if s.History == nil {
		c.JSON(http.StatusServiceUnavailable, failedChart(symbol))
		return
	}

	loader := history.NewLoader(s.History, nil, s.Config.Storage.HistoryWindow, s.Logger)
	defer loader.Close()
	loader.Load(symbol)

	ctx, cancel := context.WithTimeout(c.Request.Context(), chartTimeout)
	defer cancel()

	view, err := loader.Wait(ctx)
	if err != nil {
		errorResponse(c, http.StatusGatewayTimeout, "history query timed out")
		return
	}
	c.JSON(http.StatusOK, view)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	resp := gin.H{
		"status":         "ok",
		"connections":    s.clientCount.Load(),
		"active_charts":  s.Charts.Active(),
		"charts":         s.Charts.Charts(),
		"feed_connected": false,
	}

	if s.Feed != nil {
		stats := s.Feed.Stats()
		resp["feed_connected"] = s.Feed.Connected()
		resp["feed_stats"] = stats
		if !stats.LastDelivery.IsZero() {
			resp["last_delivery"] = humanize.Time(stats.LastDelivery)
		}
	}
	if snapshot := s.latestSnapshot(); snapshot != nil {
		resp["latest_update"] = snapshot.UpdatedAt
	}
	if s.Scheduler != nil {
		resp["session"] = s.Scheduler.Session(s.now())
	}

	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------
// Session Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": s.currentUser()})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) signIn(c *gin.Context) {
	if s.Identity == nil {
		errorResponse(c, http.StatusNotImplemented, "no identity provider configured")
		return
	}

	var user models.MUser
	if err := c.ShouldBindJSON(&user); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid user payload")
		return
	}

	signed, err := s.Identity.SignIn(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidUser) {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		s.Logger.Error("Sign-in failed: %v", err)
		errorResponse(c, http.StatusInternalServerError, "sign-in failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": signed})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) signOut(c *gin.Context) {
	if s.Identity == nil {
		errorResponse(c, http.StatusNotImplemented, "no identity provider configured")
		return
	}
	if err := s.Identity.SignOut(c.Request.Context()); err != nil {
		s.Logger.Error("Sign-out failed: %v", err)
		errorResponse(c, http.StatusInternalServerError, "sign-out failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": nil})
}
