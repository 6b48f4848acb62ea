package analysis

import (
	"math"

	"market-dashboard/src/analysis/core"
	"market-dashboard/src/models"
)

// ChartStats summarizes a window of bars, oldest first. It returns nil for an
// empty window.
func ChartStats(bars []models.MBar) *models.MChartStats {
	if len(bars) == 0 {
		return nil
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	high := -math.MaxFloat64
	low := math.MaxFloat64
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}

	first, last := bars[0], bars[len(bars)-1]
	stats := &models.MChartStats{
		From:          first.Date,
		To:            last.Date,
		High:          high,
		Low:           low,
		ChangePercent: core.CalculateChangePercent(last.Close, first.Close),
		LastVolume:    last.Volume,
		VolumeRatio:   1,
	}

	_, stats.Volatility = core.CalculateMeanStd(core.DailyReturns(closes))

	// Last bar against the bars before it
	if len(volumes) > 1 {
		mean, std := core.CalculateMeanStd(volumes[:len(volumes)-1])
		stats.AvgVolume = mean
		stats.VolumeRatio = core.CalculateAnomalyRatio(last.Volume, mean)
		stats.VolumeZScore = core.CalculateZScore(last.Volume, mean, std)
	} else {
		stats.AvgVolume = last.Volume
	}

	return stats
}
