package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/sync/errgroup"

	"github.com/stockchat-core-poc/server/internal/marketdata"
	logx "github.com/stockchat-core-poc/server/pkg/logger"
)

// ===================================
// Market Data Tool
// ===================================

// majorIndices maps ticker symbols to display names, in a stable order.
var majorIndices = []struct {
	Symbol string
	Name   string
}{
	{"^GSPC", "S&P 500"},
	{"^IXIC", "NASDAQ"},
	{"^DJI", "DOW JONES"},
}

const marketNewsQuery = "US stock market"

type MarketDataInput struct{}

type MarketDataOutput struct {
	Indices map[string]IndexSnapshot `json:"indices"`
	News    []marketdata.NewsItem    `json:"market_news,omitempty"`
}

type IndexSnapshot struct {
	Current   float64 `json:"current,omitempty"`
	Open      float64 `json:"open,omitempty"`
	High      float64 `json:"high,omitempty"`
	Low       float64 `json:"low,omitempty"`
	Volume    int64   `json:"volume,omitempty"`
	DayChange float64 `json:"day_change,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func fetchMarketData(ctx context.Context, md *marketdata.Client, includeNews bool) (*MarketDataOutput, error) {
	out := &MarketDataOutput{Indices: make(map[string]IndexSnapshot, len(majorIndices))}
	snapshots := make([]IndexSnapshot, len(majorIndices))

	g, gctx := errgroup.WithContext(ctx)
	for i, idx := range majorIndices {
		g.Go(func() error {
			quote, err := md.Quote(gctx, idx.Symbol)
			if err != nil {
				// One failing index must not take down the rest.
				logx.Warn().Err(err).Str("index", idx.Name).Msg("failed to fetch index quote")
				snapshots[i] = IndexSnapshot{Error: err.Error()}
				return nil
			}
			snapshots[i] = IndexSnapshot{
				Current:   quote.Current,
				Open:      quote.Open,
				High:      quote.High,
				Low:       quote.Low,
				Volume:    quote.Volume,
				DayChange: quote.DayChange,
				Timestamp: quote.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			}
			return nil
		})
	}

	var news []marketdata.NewsItem
	if includeNews {
		g.Go(func() error {
			items, err := md.MarketNews(gctx, marketNewsQuery, 10)
			if err != nil {
				logx.Warn().Err(err).Msg("failed to fetch market news")
				return nil
			}
			news = items
			return nil
		})
	}

	_ = g.Wait()

	for i, idx := range majorIndices {
		out.Indices[idx.Name] = snapshots[i]
	}
	out.News = news
	return out, nil
}

func createMarketDataTool(md *marketdata.Client) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolMarketData,
			Desc: "Get the current state of the three major US market indices (S&P 500, NASDAQ, DOW JONES) plus top market news headlines. Takes no parameters.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, in *MarketDataInput) (*MarketDataOutput, error) {
			return fetchMarketData(ctx, md, true)
		},
	)
}
