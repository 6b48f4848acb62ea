package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirection(t *testing.T) {
	assert.Equal(t, DirectionUp, Direction(0.01))
	assert.Equal(t, DirectionDown, Direction(-0.01))
	assert.Equal(t, DirectionNeutral, Direction(0))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0", FormatPrice(0))
	assert.Equal(t, "2,650.5", FormatPrice(2650.5))
	assert.Equal(t, "1,234,567.89", FormatPrice(1234567.891))
	assert.Equal(t, "71,500", FormatPrice(71500))
	assert.Equal(t, "-", FormatPrice(math.NaN()))
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "+1.23%", FormatChange(1.23))
	assert.Equal(t, "-0.40%", FormatChange(-0.4))
	assert.Equal(t, "0.00%", FormatChange(0))
}

func TestFormatArrowChange(t *testing.T) {
	assert.Equal(t, "▲ 1.50%", FormatArrowChange(1.5))
	assert.Equal(t, "▼ 0.75%", FormatArrowChange(-0.75))
	assert.Equal(t, "0.00%", FormatArrowChange(0))
}

func TestIndexLabel(t *testing.T) {
	assert.Equal(t, "NASDAQ 100", IndexLabel("NASDAQ_100"))
	assert.Equal(t, "KOSPI", IndexLabel("KOSPI"))
}
