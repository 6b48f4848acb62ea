package models

// MBar is one OHLCV row of the history store (one symbol, one trading day).
type MBar struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// MChartPoint is a candlestick point handed to a chart surface.
type MChartPoint struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// ChartStatus is the state of a symbol history load.
type ChartStatus string

const (
	ChartIdle    ChartStatus = "idle"
	ChartLoading ChartStatus = "loading"
	ChartReady   ChartStatus = "ready"
	ChartEmpty   ChartStatus = "empty"
	ChartFailed  ChartStatus = "failed"
)

// Terminal reports whether no further transition happens without a new Load.
func (s ChartStatus) Terminal() bool {
	return s == ChartReady || s == ChartEmpty || s == ChartFailed
}

// MChartView is what a chart region renders.
type MChartView struct {
	Symbol  string        `json:"symbol"`
	Status  ChartStatus   `json:"status"`
	Message string        `json:"message,omitempty"`
	Points  []MChartPoint `json:"points,omitempty"`
	Stats   *MChartStats  `json:"stats,omitempty"`
}

// MChartStats summarizes the loaded window. ChangePercent and Volatility are
// in percent; VolumeRatio and VolumeZScore compare the last bar with the
// bars before it.
type MChartStats struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	ChangePercent float64 `json:"changePercent"`
	Volatility    float64 `json:"volatility"`
	AvgVolume     float64 `json:"avgVolume"`
	LastVolume    float64 `json:"lastVolume"`
	VolumeRatio   float64 `json:"volumeRatio"`
	VolumeZScore  float64 `json:"volumeZScore"`
}
