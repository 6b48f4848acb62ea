package server

import (
	"net/http"

	"market-dashboard/src/history"
	"market-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// tabParam reads ?tab=, falling back to the configured default. An unknown
// tab aborts the request with 400.
func (s *DashboardServer) tabParam(c *gin.Context) (models.Category, bool) {
	raw := c.Query("tab")
	if raw == "" {
		return s.defaultTab(), true
	}
	tab, ok := models.ParseCategory(raw)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "unknown tab '"+raw+"'")
		return "", false
	}
	return tab, true
}

func (s *DashboardServer) defaultTab() models.Category {
	if tab, ok := models.ParseCategory(s.Config.Dashboard.DefaultTab); ok {
		return tab
	}
	return models.CategoryMacro
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) currentUser() *models.MUser {
	if s.Identity != nil {
		return s.Identity.Current()
	}
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.user
}

// -----------------------------------------------------------------------------

func errorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// -----------------------------------------------------------------------------

func failedChart(symbol string) models.MChartView {
	return models.MChartView{
		Symbol:  symbol,
		Status:  models.ChartFailed,
		Message: history.MessageFailed,
		Points:  []models.MChartPoint{},
	}
}

// -----------------------------------------------------------------------------

func viewMessage(view models.MDashboardView) *models.MPushMessage {
	return &models.MPushMessage{Type: "VIEW", View: &view}
}

func chartMessage(view models.MChartView) *models.MPushMessage {
	return &models.MPushMessage{Type: "CHART", Chart: &view}
}
