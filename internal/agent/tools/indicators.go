package tools

import "math"

// Technical indicator arithmetic over daily close series. Inputs are ordered
// oldest first; every function expects len(closes) >= the relevant period.

// SMA returns the simple moving average of the trailing period values.
// Returns NaN when the series is shorter than the period.
func SMA(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range closes[len(closes)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// emaSeries computes an exponential moving average with alpha=2/(period+1),
// seeded with the first value.
func emaSeries(values []float64, period int) []float64 {
	if len(values) == 0 || period <= 0 {
		return nil
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI computes the relative strength index with Wilder smoothing: the first
// average gain/loss is a simple mean over the initial period, then each step
// blends with weight 1/period.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return math.NaN()
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		diff := closes[i] - closes[i-1]
		if diff > 0 {
			avgGain += diff
		} else {
			avgLoss -= diff
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if diff > 0 {
			gain = diff
		} else {
			loss = -diff
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	switch {
	case avgLoss == 0 && avgGain == 0:
		return 50
	case avgLoss == 0:
		return 100
	case avgGain == 0:
		return 0
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Bollinger returns the upper, middle and lower band for the trailing
// period: SMA plus/minus two population standard deviations.
func Bollinger(closes []float64, period int) (upper, middle, lower float64) {
	middle = SMA(closes, period)
	if math.IsNaN(middle) {
		return math.NaN(), math.NaN(), math.NaN()
	}
	variance := 0.0
	for _, v := range closes[len(closes)-period:] {
		d := v - middle
		variance += d * d
	}
	sigma := math.Sqrt(variance / float64(period))
	return middle + 2*sigma, middle, middle - 2*sigma
}

// MACD returns the MACD line (EMA12-EMA26), its EMA9 signal line, and the
// histogram (line minus signal), all for the latest bar.
func MACD(closes []float64) (line, signal, histogram float64) {
	if len(closes) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	fast := emaSeries(closes, 12)
	slow := emaSeries(closes, 26)
	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}
	sig := emaSeries(macd, 9)

	last := len(closes) - 1
	return macd[last], sig[last], macd[last] - sig[last]
}
