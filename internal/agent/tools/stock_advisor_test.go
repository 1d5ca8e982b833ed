package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockchat-core-poc/server/internal/marketdata"
)

func marketWithChanges(changes ...float64) *MarketDataOutput {
	out := &MarketDataOutput{Indices: make(map[string]IndexSnapshot, len(changes))}
	for i, c := range changes {
		out.Indices[majorIndices[i].Name] = IndexSnapshot{DayChange: c}
	}
	return out
}

func TestAnalyzeMarketCondition(t *testing.T) {
	tests := []struct {
		name          string
		market        *MarketDataOutput
		wantSentiment string
		wantStrength  int
	}{
		{"all rising", marketWithChanges(0.5, 1.2, 0.1), "bullish", 3},
		{"all falling", marketWithChanges(-0.5, -1.2, -0.1), "bearish", -3},
		{"mixed", marketWithChanges(0.5, -1.2, 0.1), "neutral", 1},
		{"two up one flat", marketWithChanges(0.5, 1.2, 0), "bullish", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzeMarketCondition(tt.market)
			assert.Equal(t, tt.wantSentiment, got.Sentiment)
			assert.Equal(t, tt.wantStrength, got.Strength)
		})
	}
}

func TestAnalyzeMarketCondition_FailedIndexIgnored(t *testing.T) {
	market := &MarketDataOutput{Indices: map[string]IndexSnapshot{
		"S&P 500":   {DayChange: 1.0},
		"NASDAQ":    {Error: "timeout", DayChange: -5},
		"DOW JONES": {DayChange: 0.2},
	}}

	got := analyzeMarketCondition(market)
	assert.Equal(t, 2, got.Strength)
	assert.Equal(t, "bullish", got.Sentiment)
}

func TestAnalyzeCompanyFundamentals(t *testing.T) {
	company := &CompanyDataOutput{
		StockData:        &marketdata.Quote{DayChange: 1.5, Volume: 1_000_000},
		FinancialMetrics: CompanyFinancialMetrics{PERatio: 22},
	}

	got := analyzeCompanyFundamentals(company)
	assert.Equal(t, "up", got.PriceTrend)
	assert.Equal(t, "active", got.VolumeStatus)
	assert.Equal(t, "fair", got.PEStatus)
}

func TestAnalyzeCompanyFundamentals_WeakCompany(t *testing.T) {
	company := &CompanyDataOutput{
		StockData:        &marketdata.Quote{DayChange: -0.3, Volume: 0},
		FinancialMetrics: CompanyFinancialMetrics{PERatio: 85},
	}

	got := analyzeCompanyFundamentals(company)
	assert.Equal(t, "down", got.PriceTrend)
	assert.Equal(t, "thin", got.VolumeStatus)
	assert.Equal(t, "caution", got.PEStatus)
}

func TestAnalyzeCompanyFundamentals_MissingQuote(t *testing.T) {
	got := analyzeCompanyFundamentals(&CompanyDataOutput{})
	assert.Equal(t, "down", got.PriceTrend)
	assert.Equal(t, "thin", got.VolumeStatus)
}

func TestGenerateRecommendation_StrongBuy(t *testing.T) {
	market := MarketAnalysis{Sentiment: "bullish"}
	company := CompanyAnalysis{PriceTrend: "up", VolumeStatus: "active"}
	technical := &TechnicalAnalysisOutput{Analysis: map[string]string{
		"rsi":  "oversold",
		"macd": "bullish signal",
	}}

	got := generateRecommendation(market, company, technical)
	assert.Equal(t, "buy", got.Action)
	assert.Equal(t, 5, got.BuySignals)
	assert.Equal(t, 0, got.SellSignals)
	assert.InDelta(t, 100.0, got.Confidence, 1e-9)
	assert.Contains(t, got.Reasons, "broad market uptrend")
}

func TestGenerateRecommendation_StrongSell(t *testing.T) {
	market := MarketAnalysis{Sentiment: "bearish"}
	company := CompanyAnalysis{PriceTrend: "down", VolumeStatus: "thin"}
	technical := &TechnicalAnalysisOutput{Analysis: map[string]string{
		"rsi":  "overbought",
		"macd": "bearish signal",
	}}

	got := generateRecommendation(market, company, technical)
	assert.Equal(t, "sell", got.Action)
	assert.Equal(t, 0, got.BuySignals)
	assert.Equal(t, 3, got.SellSignals)
	assert.InDelta(t, 0.0, got.Confidence, 1e-9)
}

func TestGenerateRecommendation_BalancedIsHold(t *testing.T) {
	market := MarketAnalysis{Sentiment: "bullish"}
	company := CompanyAnalysis{PriceTrend: "down", VolumeStatus: "thin"}
	technical := &TechnicalAnalysisOutput{Analysis: map[string]string{
		"rsi":  "neutral",
		"macd": "bearish signal",
	}}

	got := generateRecommendation(market, company, technical)
	assert.Equal(t, "hold", got.Action)
	assert.Equal(t, got.BuySignals, got.SellSignals)
	assert.InDelta(t, 50.0, got.Confidence, 1e-9)
}

func TestGenerateRecommendation_NoTechnicalData(t *testing.T) {
	market := MarketAnalysis{Sentiment: "neutral"}
	company := CompanyAnalysis{PriceTrend: "up", VolumeStatus: "thin"}

	got := generateRecommendation(market, company, nil)
	require.Equal(t, 1, got.BuySignals)
	require.Equal(t, 0, got.SellSignals)
	assert.Equal(t, "buy", got.Action)
	assert.NotEmpty(t, got.Timestamp)
}
