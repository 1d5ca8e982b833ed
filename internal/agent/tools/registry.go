package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/stockchat-core-poc/server/internal/marketdata"
)

// Tool name constants shared with prompts and dispatch.
const (
	ToolCompanyData       = "company_data"
	ToolMarketData        = "get_market_data"
	ToolTechnicalAnalysis = "get_technical_analysis"
	ToolStockAdvisor      = "stock_advisor"
)

// GetQueryTools returns the fixed financial tool set backed by the given
// market data client.
func GetQueryTools(md *marketdata.Client) []tool.BaseTool {
	return []tool.BaseTool{
		createCompanyDataTool(md),
		createMarketDataTool(md),
		createTechnicalAnalysisTool(md),
		createStockAdvisorTool(md),
	}
}

// GetToolInfos collects the schema infos for binding to the response model.
func GetToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("get tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
