package tools

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 4.0, SMA(closes, 3), 1e-9)
	assert.InDelta(t, 3.0, SMA(closes, 5), 1e-9)
	assert.True(t, math.IsNaN(SMA(closes, 6)), "period longer than series must be NaN")
	assert.True(t, math.IsNaN(SMA(closes, 0)))
}

func TestRSI_MonotonicRise(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	// No losing day at all: RSI saturates at 100.
	assert.InDelta(t, 100.0, RSI(closes, 14), 1e-9)
}

func TestRSI_MonotonicFall(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}

	assert.InDelta(t, 0.0, RSI(closes, 14), 1e-9)
}

func TestRSI_FlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 42
	}

	// No gains and no losses: neutral by convention.
	assert.InDelta(t, 50.0, RSI(closes, 14), 1e-9)
}

func TestRSI_AlternatingEqualMoves(t *testing.T) {
	// +1/-1 alternating gives equal average gain and loss, so RS=1 and RSI=50.
	closes := make([]float64, 29)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 1
		} else {
			closes[i] = closes[i-1] - 1
		}
	}

	assert.InDelta(t, 50.0, RSI(closes, 14), 1e-9)
}

func TestRSI_TooShort(t *testing.T) {
	assert.True(t, math.IsNaN(RSI([]float64{1, 2, 3}, 14)))
}

func TestBollinger_ConstantSeries(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 10
	}

	upper, middle, lower := Bollinger(closes, 20)
	assert.InDelta(t, 10.0, upper, 1e-9)
	assert.InDelta(t, 10.0, middle, 1e-9)
	assert.InDelta(t, 10.0, lower, 1e-9)
}

func TestBollinger_KnownSigma(t *testing.T) {
	// Two values alternating around 10 with population sigma exactly 1.
	closes := []float64{9, 11, 9, 11, 9, 11, 9, 11, 9, 11}

	upper, middle, lower := Bollinger(closes, 10)
	require.InDelta(t, 10.0, middle, 1e-9)
	assert.InDelta(t, 12.0, upper, 1e-9)
	assert.InDelta(t, 8.0, lower, 1e-9)
}

func TestBollinger_TooShort(t *testing.T) {
	upper, middle, lower := Bollinger([]float64{1, 2}, 20)
	assert.True(t, math.IsNaN(upper))
	assert.True(t, math.IsNaN(middle))
	assert.True(t, math.IsNaN(lower))
}

func TestMACD_FlatSeries(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 50
	}

	line, signal, histogram := MACD(closes)
	assert.InDelta(t, 0.0, line, 1e-9)
	assert.InDelta(t, 0.0, signal, 1e-9)
	assert.InDelta(t, 0.0, histogram, 1e-9)
}

func TestMACD_UptrendIsPositive(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 2*float64(i)
	}

	line, signal, histogram := MACD(closes)
	// Fast EMA tracks a rising series closer than the slow one.
	assert.Greater(t, line, 0.0)
	assert.Greater(t, signal, 0.0)
	assert.InDelta(t, line-signal, histogram, 1e-9)
}

func TestEMASeries_SeededWithFirstValue(t *testing.T) {
	out := emaSeries([]float64{10, 20}, 9)
	require.Len(t, out, 2)
	assert.InDelta(t, 10.0, out[0], 1e-9)
	// alpha = 2/10 = 0.2 -> 0.2*20 + 0.8*10 = 12
	assert.InDelta(t, 12.0, out[1], 1e-9)
}
