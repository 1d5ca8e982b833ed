package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/stockchat-core-poc/server/internal/agent/model"
	"github.com/stockchat-core-poc/server/internal/agent/orchestrator"
	"github.com/stockchat-core-poc/server/internal/agent/repo"
	"github.com/stockchat-core-poc/server/internal/agent/tools"
	"github.com/stockchat-core-poc/server/internal/core"
	"github.com/stockchat-core-poc/server/internal/marketdata"
	logx "github.com/stockchat-core-poc/server/pkg/logger"
	pkgredis "github.com/stockchat-core-poc/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the chat agent, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis       pkgredis.Config
	Environment string `envconfig:"APP_ENV" default:"development"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Classifier   model.ClassifierModelConfig
	Response     model.ResponseModelConfig
	Conversation model.ConversationConfig
	Agent        model.AgentConfig

	// SessionID pins the REPL to a fixed session; empty generates one.
	SessionID string `envconfig:"SESSION_ID"`
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", envCfg.Conversation.TTL, err)
	}

	// Sessions live in Redis when configured, in process memory otherwise.
	var sessions model.SessionRepository
	if envCfg.Redis.Enabled() {
		rdb, err := envCfg.Redis.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()
		sessions = repo.NewRedisSessionRepository(rdb, ttl)
		fmt.Println("Connected to Redis successfully")
	} else {
		sessions = repo.NewMemorySessionRepository()
		fmt.Println("REDIS_URL not set, using in-memory session store")
	}

	md := marketdata.NewClient()

	models, err := orchestrator.NewChatModels(ctx, orchestrator.ChatModelConfig{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		ClassifierConfig: &envCfg.Classifier,
		ResponseConfig:   &envCfg.Response,
	})
	if err != nil {
		log.Fatalf("Failed to create chat models: %v", err)
	}

	orch, err := orchestrator.New(ctx, orchestrator.Config{
		Models:          models,
		Tools:           tools.GetQueryTools(md),
		Sessions:        sessions,
		FailDomain:      envCfg.Classifier.FailDomain,
		HistoryMaxTurns: envCfg.Conversation.HistoryMaxTurns,
		MaxIterations:   envCfg.Agent.MaxIterations,
		ToolTimeout:     envCfg.Agent.ToolTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to build orchestrator: %v", err)
	}

	sessionID := envCfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	runREPL(ctx, orch, sessionID)
}

func runREPL(ctx context.Context, orch *orchestrator.Orchestrator, sessionID string) {
	fmt.Println("Stock analysis chat agent. Type a question, or one of:")
	fmt.Println("  log      show tool usage log")
	fmt.Println("  history  show conversation history")
	fmt.Println("  clear    reset the conversation")
	fmt.Println("  exit     quit")
	fmt.Printf("Session: %s\n\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "exit", "quit":
			return

		case "log":
			entries := orch.UsageLog().Entries()
			if len(entries) == 0 {
				fmt.Println("No tool calls recorded yet.")
				continue
			}
			for _, e := range entries {
				out := e.Output
				if len(out) > 200 {
					out = out[:200] + "..."
				}
				fmt.Printf("[%s] %s\n  input:  %s\n  output: %s\n",
					e.Timestamp.Format(time.RFC3339), e.Tool, e.Input, out)
			}

		case "history":
			history, err := orch.History(ctx, sessionID)
			if err != nil {
				fmt.Printf("Failed to load history: %v\n", err)
				continue
			}
			if len(history.Messages) == 0 {
				fmt.Println("Conversation is empty.")
				continue
			}
			for _, m := range history.Messages {
				fmt.Printf("%s: %s\n", m.Role, m.Content)
			}

		case "clear":
			if err := orch.ClearSession(ctx, sessionID); err != nil {
				fmt.Printf("Failed to clear session: %v\n", err)
				continue
			}
			fmt.Println("Conversation cleared.")

		default:
			answer, err := orch.Run(ctx, model.QueryInput{SessionID: sessionID, Query: line})
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Printf("\n%s\n\n", answer)
		}
	}
}
