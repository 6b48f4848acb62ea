package projection

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Direction values shared by every section.
const (
	DirectionUp      = "up"
	DirectionDown    = "down"
	DirectionNeutral = "neutral"
)

// Direction maps the sign of a change percentage to its styling direction.
func Direction(changePercent float64) string {
	switch {
	case changePercent > 0:
		return DirectionUp
	case changePercent < 0:
		return DirectionDown
	default:
		return DirectionNeutral
	}
}

// FormatPrice renders a price with thousands separators and at most two
// decimals.
func FormatPrice(price float64) string {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return "-"
	}
	return humanize.CommafWithDigits(price, 2)
}

// FormatChange renders a signed percentage, "+1.23%" / "-0.40%" / "0.00%".
func FormatChange(changePercent float64) string {
	if changePercent > 0 {
		return fmt.Sprintf("+%.2f%%", changePercent)
	}
	if changePercent == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", changePercent)
}

// FormatArrowChange renders the magnitude with a direction arrow.
func FormatArrowChange(changePercent float64) string {
	switch Direction(changePercent) {
	case DirectionUp:
		return fmt.Sprintf("▲ %.2f%%", changePercent)
	case DirectionDown:
		return fmt.Sprintf("▼ %.2f%%", -changePercent)
	default:
		return "0.00%"
	}
}

// IndexLabel turns a feed key ("S&P_500") into display text ("S&P 500").
func IndexLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
