package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/stockchat-core-poc/server/internal/agent/tools"
)

//go:embed template/classifier_prompt.txt
var classifierSystemPrompt string

//go:embed template/general_prompt.txt
var generalSystemPrompt string

//go:embed template/agent_prompt.txt
var agentSystemPrompt string

// render formats a single system message through the Eino prompt component.
func render(ctx context.Context, raw string, vars map[string]any) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(raw),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// RenderClassifierSystem returns the system prompt for the domain classifier.
func RenderClassifierSystem(ctx context.Context) (string, error) {
	return render(ctx, classifierSystemPrompt, map[string]any{})
}

// RenderGeneralSystem returns the system prompt for non-domain answers.
func RenderGeneralSystem(ctx context.Context) (string, error) {
	return render(ctx, generalSystemPrompt, map[string]any{})
}

// RenderAgentSystem returns the system prompt for the tool-calling reasoning
// model, with the tool names filled in from the registry.
func RenderAgentSystem(ctx context.Context) (string, error) {
	return render(ctx, agentSystemPrompt, map[string]any{
		"CompanyTool":   tools.ToolCompanyData,
		"MarketTool":    tools.ToolMarketData,
		"TechnicalTool": tools.ToolTechnicalAnalysis,
		"AdvisorTool":   tools.ToolStockAdvisor,
	})
}
