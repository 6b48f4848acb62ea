package interfaces

import "market-dashboard/src/models"

// -----------------------------------------------------------------------------
// Chart rendering resources
// -----------------------------------------------------------------------------

// IChartSurface hands out a chart per (loader instance, symbol).
type IChartSurface interface {
	Acquire(symbol string) (IChart, error)
}

// IChart is one acquired chart. Release must be called exactly once.
type IChart interface {
	SetData(points []models.MChartPoint)
	Release()
}
