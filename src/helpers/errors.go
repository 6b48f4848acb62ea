package helpers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"market-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

// ErrNotYetAvailable marks data the producer has not written yet. It is a
// waiting state, never shown as a failure.
var ErrNotYetAvailable = errors.New("data not yet available")

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// TransportError is a failure of the feed subscription or the history query.
type TransportError struct{ DashboardError }

// HistoryError is a failed history query for one symbol.
type HistoryError struct {
	DashboardError
	Symbol string
}

// MalformedDataError reports a populated feed field with an unexpected shape.
// Key is empty when the whole section was dropped.
type MalformedDataError struct {
	DashboardError
	Section string
	Key     string
}

// -----------------------------------------------------------------------------

func NewTransportError(message string, cause error) *TransportError {
	return &TransportError{DashboardError{Message: message, Cause: cause}}
}

func NewHistoryError(symbol string, cause error) *HistoryError {
	return &HistoryError{
		DashboardError: DashboardError{Message: fmt.Sprintf("history query for %s failed", symbol), Cause: cause},
		Symbol:         symbol,
	}
}

func NewMalformedDataError(section, key string, cause error) *MalformedDataError {
	where := section
	if key != "" {
		where = section + "." + key
	}
	return &MalformedDataError{
		DashboardError: DashboardError{Message: fmt.Sprintf("malformed feed data at %s", where), Cause: cause},
		Section:        section,
		Key:            key,
	}
}

// -----------------------------------------------------------------------------
// Backoff
// -----------------------------------------------------------------------------

// Backoff returns the delay before reconnect attempt n (0-based): base doubled
// per attempt and capped at max.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if base <= 0 || attempt >= 62 || base > max>>uint(attempt) {
		return max
	}
	return base << uint(attempt)
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler logs failures and counts them per UI section so a failing
// section never affects the others.
type ErrorHandler struct {
	Logger *logger.Logger

	mu     sync.Mutex
	counts map[string]int
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{
		Logger: log,
		counts: make(map[string]int),
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, section string) {
	if err == nil || errors.Is(err, ErrNotYetAvailable) {
		return
	}
	e.mu.Lock()
	e.counts[section]++
	e.mu.Unlock()

	var malformed *MalformedDataError
	if errors.As(err, &malformed) {
		e.Logger.Warning("Malformed data in %s: %v", section, err)
		return
	}
	e.Logger.Error("Error in %s: %v", section, err)
}

// -----------------------------------------------------------------------------

// Count returns the number of handled errors for a section.
func (e *ErrorHandler) Count(section string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts[section]
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount(section string) {
	e.mu.Lock()
	delete(e.counts, section)
	e.mu.Unlock()
}
