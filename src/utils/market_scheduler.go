package utils

import (
	"time"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// MarketScheduler reports the session state of the domestic and global
// markets shown in the dashboard header.
type MarketScheduler struct {
	Domestic *TradingCalendar
	Global   *TradingCalendar
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(domesticMIC, globalMIC string, l *logger.Logger) *MarketScheduler {
	if l == nil {
		l = logger.NewNop()
	}
	ms := &MarketScheduler{
		Domestic: GetCalendar(domesticMIC, l),
		Global:   GetCalendar(globalMIC, l),
		Logger:   l,
	}
	ms.Logger.Info("MarketScheduler: domestic=%s global=%s", ms.Domestic.MIC, ms.Global.MIC)
	return ms
}

// -----------------------------------------------------------------------------

// Session returns the open/closed state of both markets at now.
func (ms *MarketScheduler) Session(now time.Time) *models.MMarketSession {
	return &models.MMarketSession{
		DomesticMIC:  ms.Domestic.MIC,
		DomesticOpen: ms.Domestic.IsOpenOnMinute(now),
		GlobalMIC:    ms.Global.MIC,
		GlobalOpen:   ms.Global.IsOpenOnMinute(now),
	}
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if either market is currently open
func (ms *MarketScheduler) AnyMarketOpen(now time.Time) bool {
	return ms.Domestic.IsOpenOnMinute(now) || ms.Global.IsOpenOnMinute(now)
}
