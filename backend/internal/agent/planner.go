// Package agent implements the plan-then-execute pipeline: one model call
// to produce a structured tool plan, a bounded walk over the plan's steps,
// and a final answer-generation call folding in tool outputs and memory.
package agent

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"rico-bot/backend/internal/adapter"
	"rico-bot/backend/pkg/logger"
)

// ChatClient is the language-model boundary the agent depends on
type ChatClient interface {
	Chat(ctx context.Context, messages []adapter.Message, opts *adapter.ChatOptions) (string, error)
}

// PlanStep is one requested tool invocation
type PlanStep struct {
	Tool  string `json:"tool"`
	Input string `json:"input"`
}

// Plan is the parsed output of the planning call
type Plan struct {
	Steps       []PlanStep `json:"steps"`
	FinalPrompt string     `json:"final_prompt"`
}

const planInstruction = "You are an autonomous agent. Produce a single JSON object with a 'steps' array where each step includes 'tool' and 'input'. Also include an optional 'final_prompt' to craft the final answer."

// Planner asks the model for a structured action plan
type Planner struct {
	llm    ChatClient
	logger *zap.Logger
}

// NewPlanner creates a planner over the given chat client
func NewPlanner(llm ChatClient) *Planner {
	return &Planner{llm: llm, logger: logger.Get()}
}

// Plan requests a plan for query. It never fails: a transport error or an
// unparseable response degrades to an empty plan whose final prompt is the
// query verbatim. No retry is attempted.
func (p *Planner) Plan(ctx context.Context, query string) *Plan {
	messages := []adapter.Message{
		{Role: "system", Content: planInstruction},
		{Role: "user", Content: "User query: " + query + "\nPlease provide a JSON plan."},
	}

	response, err := p.llm.Chat(ctx, messages, nil)
	if err != nil {
		p.logger.Warn("Planner call failed, degrading to empty plan", zap.Error(err))
		return degradedPlan(query)
	}
	p.logger.Debug("Planner raw response", zap.String("response", response))

	return ParsePlan(response, query)
}

// ParsePlan extracts a plan from raw model output. The model is untrusted:
// code fences and surrounding prose are tolerated, and any parse failure
// yields the degraded plan.
func ParsePlan(raw, query string) *Plan {
	candidate, ok := ExtractJSONObject(raw)
	if !ok {
		return degradedPlan(query)
	}
	var plan Plan
	if err := json.Unmarshal([]byte(candidate), &plan); err != nil {
		return degradedPlan(query)
	}
	if plan.FinalPrompt == "" {
		plan.FinalPrompt = query
	}
	return &plan
}

// ExtractJSONObject strips code-fence markers and returns the substring
// between the first '{' and the last '}'.
func ExtractJSONObject(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

func degradedPlan(query string) *Plan {
	return &Plan{Steps: nil, FinalPrompt: query}
}
