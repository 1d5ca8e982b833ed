package model

import "time"

// ================ Config ================

type ConversationConfig struct {
	// TTL expires stored sessions when set; "0" keeps them indefinitely.
	TTL             string `envconfig:"CONVERSATION_TTL" default:"0"`
	HistoryMaxTurns int    `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"20"`
}

type ClassifierModelConfig struct {
	Model       string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"200"`
	Temperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0.0"`

	// FailDomain picks the route taken when the classifier call fails or its
	// answer cannot be parsed. The default degrades to the general path, which
	// keeps a broken classifier from wedging every query into tool calling.
	FailDomain bool `envconfig:"CLASSIFIER_FAIL_DOMAIN" default:"false"`
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
}

type AgentConfig struct {
	// MaxIterations bounds AGENT entries per run. Exceeding it fails the run
	// with a non-convergence error instead of looping forever.
	MaxIterations int `envconfig:"AGENT_MAX_ITERATIONS" default:"8"`

	// ToolTimeout caps a single tool invocation inside a batch.
	ToolTimeout time.Duration `envconfig:"AGENT_TOOL_TIMEOUT" default:"30s"`
}
