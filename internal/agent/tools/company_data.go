package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/stockchat-core-poc/server/internal/marketdata"
)

// ===================================
// Company Data Tool
// ===================================

type CompanyDataInput struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name,omitempty"`
}

type CompanyDataOutput struct {
	BasicInfo        CompanyBasicInfo        `json:"basic_info"`
	StockData        *marketdata.Quote       `json:"stock_data"`
	FinancialMetrics CompanyFinancialMetrics `json:"financial_metrics"`
}

type CompanyBasicInfo struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"company_name,omitempty"`
	Sector      string  `json:"sector,omitempty"`
	Industry    string  `json:"industry,omitempty"`
	MarketCap   float64 `json:"market_cap,omitempty"`
}

type CompanyFinancialMetrics struct {
	PERatio       float64 `json:"pe_ratio,omitempty"`
	DividendYield float64 `json:"dividend_yield,omitempty"`
	Beta          float64 `json:"beta,omitempty"`
	EPS           float64 `json:"eps,omitempty"`
}

func fetchCompanyData(ctx context.Context, md *marketdata.Client, in *CompanyDataInput) (*CompanyDataOutput, error) {
	if in.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	quote, err := md.Quote(ctx, in.Symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch stock data: %w", err)
	}

	out := &CompanyDataOutput{
		BasicInfo: CompanyBasicInfo{
			Symbol:      in.Symbol,
			CompanyName: in.CompanyName,
		},
		StockData: quote,
	}

	// The quote is the tool's core result; a missing profile degrades to
	// empty fundamentals instead of failing the call.
	if profile, err := md.Profile(ctx, in.Symbol); err == nil {
		out.BasicInfo.Sector = profile.Sector
		out.BasicInfo.Industry = profile.Industry
		out.BasicInfo.MarketCap = profile.MarketCap
		out.FinancialMetrics = CompanyFinancialMetrics{
			PERatio:       profile.PERatio,
			DividendYield: profile.DividendYield,
			Beta:          profile.Beta,
			EPS:           profile.EPS,
		}
	}

	return out, nil
}

func createCompanyDataTool(md *marketdata.Client) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCompanyData,
			Desc: "Look up a company's stock quote (open, close, high, low, volume, day change), basic info (sector, industry, market cap), and financial metrics (P/E ratio, dividend yield, beta, EPS).",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "Stock ticker symbol, e.g. AAPL",
					Required: true,
				},
				"company_name": {
					Type: "string",
					Desc: "Optional company name, e.g. Apple",
				},
			}),
		},
		func(ctx context.Context, in *CompanyDataInput) (*CompanyDataOutput, error) {
			return fetchCompanyData(ctx, md, in)
		},
	)
}
