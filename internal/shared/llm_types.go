package shared

import (
	"time"
)

// ContextBloatThreshold is the prompt size that triggers an admin alert.
const ContextBloatThreshold = 4000

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
}

// AgentMeta holds operational metadata for an agent execution.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// Bloated reports whether the prompt exceeded ContextBloatThreshold.
func (m AgentMeta) Bloated() bool {
	return m.Usage.PromptTokens > ContextBloatThreshold
}
