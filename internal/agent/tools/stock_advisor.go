package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/sync/errgroup"

	"github.com/stockchat-core-poc/server/internal/marketdata"
)

// ===================================
// Stock Advisor Tool
// ===================================

type StockAdvisorInput struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name,omitempty"`
}

type StockAdvisorOutput struct {
	Recommendation    Recommendation           `json:"recommendation"`
	MarketAnalysis    MarketAnalysis           `json:"market_analysis"`
	CompanyAnalysis   CompanyAnalysis          `json:"company_analysis"`
	TechnicalAnalysis *TechnicalAnalysisOutput `json:"technical_analysis"`
}

type Recommendation struct {
	Action      string   `json:"recommendation"`
	Confidence  float64  `json:"confidence"`
	Reasons     []string `json:"reasons"`
	BuySignals  int      `json:"buy_signals"`
	SellSignals int      `json:"sell_signals"`
	Timestamp   string   `json:"timestamp"`
}

type MarketAnalysis struct {
	Sentiment string            `json:"sentiment"`
	Strength  int               `json:"strength"`
	Details   *MarketDataOutput `json:"details"`
}

type CompanyAnalysis struct {
	PriceTrend   string             `json:"price_trend"`
	VolumeStatus string             `json:"volume_status"`
	PEStatus     string             `json:"pe_status"`
	Details      *CompanyDataOutput `json:"details"`
}

// analyzeMarketCondition scores index breadth: each rising index counts +1,
// each falling one -1.
func analyzeMarketCondition(market *MarketDataOutput) MarketAnalysis {
	strength := 0
	for _, snapshot := range market.Indices {
		if snapshot.Error != "" {
			continue
		}
		if snapshot.DayChange > 0 {
			strength++
		} else if snapshot.DayChange < 0 {
			strength--
		}
	}

	sentiment := "neutral"
	if strength >= 2 {
		sentiment = "bullish"
	} else if strength <= -2 {
		sentiment = "bearish"
	}

	return MarketAnalysis{Sentiment: sentiment, Strength: strength, Details: market}
}

func analyzeCompanyFundamentals(company *CompanyDataOutput) CompanyAnalysis {
	analysis := CompanyAnalysis{
		PriceTrend:   "down",
		VolumeStatus: "thin",
		PEStatus:     "caution",
		Details:      company,
	}
	if company.StockData != nil {
		if company.StockData.DayChange > 0 {
			analysis.PriceTrend = "up"
		}
		if company.StockData.Volume > 0 {
			analysis.VolumeStatus = "active"
		}
	}
	if pe := company.FinancialMetrics.PERatio; pe >= 10 && pe <= 30 {
		analysis.PEStatus = "fair"
	}
	return analysis
}

func generateRecommendation(market MarketAnalysis, company CompanyAnalysis, technical *TechnicalAnalysisOutput) Recommendation {
	buySignals := 0
	sellSignals := 0
	var reasons []string

	switch market.Sentiment {
	case "bullish":
		buySignals++
		reasons = append(reasons, "broad market uptrend")
	case "bearish":
		sellSignals++
		reasons = append(reasons, "broad market downtrend")
	}

	if company.PriceTrend == "up" {
		buySignals++
		reasons = append(reasons, "price in uptrend")
	}
	if company.VolumeStatus == "active" {
		buySignals++
		reasons = append(reasons, "healthy trading volume")
	}

	if technical != nil {
		switch technical.Analysis["rsi"] {
		case "oversold":
			buySignals++
			reasons = append(reasons, "RSI in oversold territory (buy opportunity)")
		case "overbought":
			sellSignals++
			reasons = append(reasons, "RSI in overbought territory")
		}
		if technical.Analysis["macd"] == "bullish signal" {
			buySignals++
			reasons = append(reasons, "MACD bullish crossover")
		} else {
			sellSignals++
			reasons = append(reasons, "MACD bearish crossover")
		}
	}

	confidence := 50.0
	if buySignals+sellSignals > 0 {
		confidence = float64(buySignals) / float64(buySignals+sellSignals) * 100
	}

	action := "hold"
	if buySignals > sellSignals {
		action = "buy"
	} else if sellSignals > buySignals {
		action = "sell"
	}

	return Recommendation{
		Action:      action,
		Confidence:  round2(confidence),
		Reasons:     reasons,
		BuySignals:  buySignals,
		SellSignals: sellSignals,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

func fetchStockAdvice(ctx context.Context, md *marketdata.Client, in *StockAdvisorInput) (*StockAdvisorOutput, error) {
	if in.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	var (
		company   *CompanyDataOutput
		market    *MarketDataOutput
		technical *TechnicalAnalysisOutput
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		company, err = fetchCompanyData(gctx, md, &CompanyDataInput{Symbol: in.Symbol, CompanyName: in.CompanyName})
		return err
	})
	g.Go(func() error {
		var err error
		market, err = fetchMarketData(gctx, md, false)
		return err
	})
	g.Go(func() error {
		var err error
		technical, err = fetchTechnicalAnalysis(gctx, md, &TechnicalAnalysisInput{Symbol: in.Symbol})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("gather analysis inputs: %w", err)
	}

	marketAnalysis := analyzeMarketCondition(market)
	companyAnalysis := analyzeCompanyFundamentals(company)

	return &StockAdvisorOutput{
		Recommendation:    generateRecommendation(marketAnalysis, companyAnalysis, technical),
		MarketAnalysis:    marketAnalysis,
		CompanyAnalysis:   companyAnalysis,
		TechnicalAnalysis: technical,
	}, nil
}

func createStockAdvisorTool(md *marketdata.Client) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolStockAdvisor,
			Desc: "Produce a composite investment recommendation (buy/sell/hold with confidence and reasons) by combining company data, overall market condition, and technical indicators. Use for buy/sell opinions and investment decisions.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "Stock ticker symbol to analyze, e.g. AAPL",
					Required: true,
				},
				"company_name": {
					Type: "string",
					Desc: "Optional company name",
				},
			}),
		},
		func(ctx context.Context, in *StockAdvisorInput) (*StockAdvisorOutput, error) {
			return fetchStockAdvice(ctx, md, in)
		},
	)
}
