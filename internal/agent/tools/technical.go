package tools

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/stockchat-core-poc/server/internal/marketdata"
)

// ===================================
// Technical Analysis Tool
// ===================================

const (
	defaultPeriodDays = 180
	defaultRSIPeriod  = 14
	defaultBBPeriod   = 20
)

var defaultMAPeriods = []int{50, 200}

type TechnicalAnalysisInput struct {
	Symbol     string `json:"symbol"`
	PeriodDays int    `json:"period_days,omitempty"`
	RSIPeriod  int    `json:"rsi_period,omitempty"`
	BBPeriod   int    `json:"bb_period,omitempty"`
	MAPeriods  []int  `json:"ma_periods,omitempty"`
}

type TechnicalAnalysisOutput struct {
	Symbol         string             `json:"symbol"`
	PeriodDays     int                `json:"period_days"`
	Timestamp      string             `json:"timestamp"`
	RSI            RSIResult          `json:"rsi"`
	BollingerBands BollingerResult    `json:"bollinger_bands"`
	MACD           MACDResult         `json:"macd"`
	MovingAverages map[string]float64 `json:"moving_averages"`
	Analysis       map[string]string  `json:"analysis"`
}

type RSIResult struct {
	Value  float64 `json:"value"`
	Period int     `json:"period"`
}

type BollingerResult struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
	Period int     `json:"period"`
}

type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

func (in *TechnicalAnalysisInput) applyDefaults() {
	if in.PeriodDays <= 0 {
		in.PeriodDays = defaultPeriodDays
	}
	if in.RSIPeriod <= 0 {
		in.RSIPeriod = defaultRSIPeriod
	}
	if in.BBPeriod <= 0 {
		in.BBPeriod = defaultBBPeriod
	}
	if len(in.MAPeriods) == 0 {
		in.MAPeriods = defaultMAPeriods
	}
}

func fetchTechnicalAnalysis(ctx context.Context, md *marketdata.Client, in *TechnicalAnalysisInput) (*TechnicalAnalysisOutput, error) {
	if in.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	in.applyDefaults()

	chart, err := md.Chart(ctx, in.Symbol, in.PeriodDays)
	if err != nil {
		return nil, fmt.Errorf("fetch price data: %w", err)
	}
	closes := chart.Close

	out := &TechnicalAnalysisOutput{
		Symbol:         in.Symbol,
		PeriodDays:     in.PeriodDays,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		MovingAverages: make(map[string]float64, len(in.MAPeriods)),
	}

	out.RSI = RSIResult{Value: round2(RSI(closes, in.RSIPeriod)), Period: in.RSIPeriod}

	upper, middle, lower := Bollinger(closes, in.BBPeriod)
	out.BollingerBands = BollingerResult{
		Upper:  round2(upper),
		Middle: round2(middle),
		Lower:  round2(lower),
		Period: in.BBPeriod,
	}

	line, signal, histogram := MACD(closes)
	out.MACD = MACDResult{MACD: round2(line), Signal: round2(signal), Histogram: round2(histogram)}

	for _, p := range in.MAPeriods {
		out.MovingAverages[fmt.Sprintf("ma%d", p)] = round2(SMA(closes, p))
	}

	out.Analysis = analyzeIndicators(out, closes[len(closes)-1])
	return out, nil
}

// analyzeIndicators turns raw indicator values into the short verdicts the
// reasoning model works with.
func analyzeIndicators(data *TechnicalAnalysisOutput, lastClose float64) map[string]string {
	analysis := make(map[string]string, 3)

	switch {
	case data.RSI.Value > 70:
		analysis["rsi"] = "overbought"
	case data.RSI.Value < 30:
		analysis["rsi"] = "oversold"
	default:
		analysis["rsi"] = "neutral"
	}

	if data.MACD.MACD > data.MACD.Signal {
		analysis["macd"] = "bullish signal"
	} else {
		analysis["macd"] = "bearish signal"
	}

	bb := data.BollingerBands
	switch {
	case lastClose > bb.Upper:
		analysis["bollinger"] = "price above upper band"
	case lastClose < bb.Lower:
		analysis["bollinger"] = "price below lower band"
	default:
		analysis["bollinger"] = "price within bands"
	}

	return analysis
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func createTechnicalAnalysisTool(md *marketdata.Client) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolTechnicalAnalysis,
			Desc: "Analyze technical indicators for a stock: RSI, Bollinger bands, MACD, and moving averages, with a short verdict per indicator (overbought/oversold, bullish/bearish, band position).",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "Stock ticker symbol to analyze, e.g. AAPL",
					Required: true,
				},
				"period_days": {
					Type: "number",
					Desc: "Price history window in days (default: 180)",
				},
				"rsi_period": {
					Type: "number",
					Desc: "RSI lookback period (default: 14)",
				},
				"bb_period": {
					Type: "number",
					Desc: "Bollinger band lookback period (default: 20)",
				},
				"ma_periods": {
					Type: "array",
					Desc: "Moving average periods (default: [50, 200])",
					ElemInfo: &schema.ParameterInfo{
						Type: "number",
					},
				},
			}),
		},
		func(ctx context.Context, in *TechnicalAnalysisInput) (*TechnicalAnalysisOutput, error) {
			return fetchTechnicalAnalysis(ctx, md, in)
		},
	)
}
