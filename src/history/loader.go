package history

import (
	"context"
	"strings"
	"sync"

	"market-dashboard/src/analysis"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------

const (
	DefaultWindow = 60

	MessageEmpty  = "데이터 없음 (파이프라인 첫 실행 후 표시됩니다)"
	MessageFailed = "차트 데이터 로드 실패"
)

// -----------------------------------------------------------------------------
// Loader
// -----------------------------------------------------------------------------

// Loader runs the one-shot history fetch of one chart component. Each Load
// supersedes the previous one: its context is cancelled, its chart released,
// and its result discarded if it still arrives.
type Loader struct {
	store   interfaces.IHistoryStore
	surface interfaces.IChartSurface
	window  int
	Logger  *logger.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	chart      interfaces.IChart
	view       models.MChartView
	onChange   func(models.MChartView)
	closed     bool
}

// NewLoader creates an idle loader. surface may be nil when nothing renders
// the points (one-shot API queries).
func NewLoader(store interfaces.IHistoryStore, surface interfaces.IChartSurface, window int, log *logger.Logger) *Loader {
	if window <= 0 {
		window = DefaultWindow
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{
		store:   store,
		surface: surface,
		window:  window,
		Logger:  log,
		view:    models.MChartView{Status: models.ChartIdle, Points: []models.MChartPoint{}},
	}
}

// -----------------------------------------------------------------------------

// OnChange registers the listener for state transitions. It runs with the
// loader locked and must not call back into the loader.
func (l *Loader) OnChange(fn func(models.MChartView)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// -----------------------------------------------------------------------------

// Load enters Loading for symbol and starts the fetch.
func (l *Loader) Load(symbol string) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		l.Unload()
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}

	l.teardownLocked()
	l.generation++
	gen := l.generation

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	l.setViewLocked(models.MChartView{Symbol: symbol, Status: models.ChartLoading, Points: []models.MChartPoint{}})
	go l.fetch(ctx, gen, symbol, done)
}

// -----------------------------------------------------------------------------

// Unload returns to Idle, releasing the chart and abandoning any fetch.
func (l *Loader) Unload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.teardownLocked()
	l.generation++
	if l.view.Status != models.ChartIdle {
		l.setViewLocked(models.MChartView{Status: models.ChartIdle, Points: []models.MChartPoint{}})
	}
}

// -----------------------------------------------------------------------------

// Close releases everything. The loader ignores all further calls.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.teardownLocked()
	l.generation++
	l.closed = true
	l.onChange = nil
}

// -----------------------------------------------------------------------------

// View returns the current state.
func (l *Loader) View() models.MChartView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view
}

// -----------------------------------------------------------------------------

// Wait blocks until the current load reaches a terminal state or is
// superseded, then returns the state.
func (l *Loader) Wait(ctx context.Context) (models.MChartView, error) {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return l.View(), ctx.Err()
		}
	}
	return l.View(), nil
}

// -----------------------------------------------------------------------------

func (l *Loader) fetch(ctx context.Context, gen uint64, symbol string, done chan struct{}) {
	defer close(done)

	bars, err := l.store.RecentBars(ctx, symbol, l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation || l.closed {
		l.Logger.Debug("Discarding stale history result for %s", symbol)
		return
	}

	switch {
	case err != nil:
		l.Logger.Error("%v", helpers.NewHistoryError(symbol, err))
		l.setViewLocked(models.MChartView{Symbol: symbol, Status: models.ChartFailed, Message: MessageFailed, Points: []models.MChartPoint{}})

	case len(bars) == 0:
		l.setViewLocked(models.MChartView{Symbol: symbol, Status: models.ChartEmpty, Message: MessageEmpty, Points: []models.MChartPoint{}})

	default:
		points := ChartPoints(bars)
		if l.surface != nil {
			chart, err := l.surface.Acquire(symbol)
			if err != nil {
				l.Logger.Error("Failed to acquire chart for %s: %v", symbol, err)
				l.setViewLocked(models.MChartView{Symbol: symbol, Status: models.ChartFailed, Message: MessageFailed, Points: []models.MChartPoint{}})
				return
			}
			chart.SetData(points)
			l.chart = chart
		}
		l.setViewLocked(models.MChartView{Symbol: symbol, Status: models.ChartReady, Points: points, Stats: analysis.ChartStats(bars)})
	}
}

// -----------------------------------------------------------------------------

func (l *Loader) teardownLocked() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.chart != nil {
		l.chart.Release()
		l.chart = nil
	}
	l.done = nil
}

func (l *Loader) setViewLocked(view models.MChartView) {
	l.view = view
	if l.onChange != nil {
		l.onChange(view)
	}
}

// -----------------------------------------------------------------------------

// ChartPoints converts bars to chart points, keeping their order.
func ChartPoints(bars []models.MBar) []models.MChartPoint {
	points := make([]models.MChartPoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, models.MChartPoint{
			Time:  b.Date,
			Open:  b.Open,
			High:  b.High,
			Low:   b.Low,
			Close: b.Close,
		})
	}
	return points
}
