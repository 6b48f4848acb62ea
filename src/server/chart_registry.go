package server

import (
	"sync"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// ChartRegistry
// -----------------------------------------------------------------------------

// ChartRegistry hands out the charts mounted by websocket clients and keeps
// the ones not yet released.
type ChartRegistry struct {
	mu     sync.Mutex
	charts map[string]*registeredChart
}

type registeredChart struct {
	id       string
	symbol   string
	registry *ChartRegistry
	once     sync.Once

	mu     sync.Mutex
	points int
}

var _ interfaces.IChartSurface = (*ChartRegistry)(nil)

func NewChartRegistry() *ChartRegistry {
	return &ChartRegistry{charts: make(map[string]*registeredChart)}
}

// -----------------------------------------------------------------------------

func (r *ChartRegistry) Acquire(symbol string) (interfaces.IChart, error) {
	chart := &registeredChart{id: uuid.NewString(), symbol: symbol, registry: r}

	r.mu.Lock()
	r.charts[chart.id] = chart
	r.mu.Unlock()
	return chart, nil
}

// Active returns the number of acquired, unreleased charts.
func (r *ChartRegistry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.charts)
}

// ChartInfo describes one mounted chart.
type ChartInfo struct {
	Symbol string `json:"symbol"`
	Points int    `json:"points"`
}

// Charts lists the active charts.
func (r *ChartRegistry) Charts() []ChartInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChartInfo, 0, len(r.charts))
	for _, c := range r.charts {
		c.mu.Lock()
		out = append(out, ChartInfo{Symbol: c.symbol, Points: c.points})
		c.mu.Unlock()
	}
	return out
}

// -----------------------------------------------------------------------------

func (c *registeredChart) SetData(points []models.MChartPoint) {
	c.mu.Lock()
	c.points = len(points)
	c.mu.Unlock()
}

func (c *registeredChart) Release() {
	c.once.Do(func() {
		c.registry.mu.Lock()
		delete(c.registry.charts, c.id)
		c.registry.mu.Unlock()
	})
}
