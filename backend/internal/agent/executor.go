package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"rico-bot/backend/internal/adapter"
	"rico-bot/backend/internal/constants"
	"rico-bot/backend/internal/identity"
	"rico-bot/backend/internal/memory"
	"rico-bot/backend/internal/tools"
	"rico-bot/backend/pkg/logger"
)

// Executor walks a plan's steps, dispatches tools through the registry, and
// issues the final answer-generation call.
type Executor struct {
	registry *tools.Registry
	memory   *memory.Manager
	llm      ChatClient
	logger   *zap.Logger
}

// NewExecutor creates an executor over the given collaborators
func NewExecutor(registry *tools.Registry, mem *memory.Manager, llm ChatClient) *Executor {
	return &Executor{
		registry: registry,
		memory:   mem,
		llm:      llm,
		logger:   logger.Get(),
	}
}

// Execute runs plan against the tool registry and returns the final answer.
// At most MaxToolCalls tools run; remaining steps are dropped behind the
// limit marker. One failing step never aborts the plan.
func (e *Executor) Execute(ctx context.Context, plan *Plan, query string, who identity.Identity, channelID int64) (string, error) {
	var outputs []string
	calls := 0

	for _, step := range plan.Steps {
		if calls >= constants.MaxToolCalls {
			outputs = append(outputs, constants.ToolLimitMarker)
			break
		}

		tool, ok := e.registry.Get(step.Tool)
		if !ok {
			outputs = append(outputs, fmt.Sprintf("[Unknown tool: %s]", step.Tool))
			calls++
			continue
		}

		input := step.Input
		if tool.Structured {
			input = buildStructuredArgs(tool, who, query, channelID)
		}

		out := e.runStep(ctx, tool, input)
		outputs = append(outputs, fmt.Sprintf("%s(%s) -> %s", tool.Name, input, out))
		calls++
	}

	// With no tool steps, surface memory directly so the final call still
	// has context. Skipped when tools ran: their outputs already carry it.
	var snippets []string
	if len(plan.Steps) == 0 {
		snippets = e.gatherMemorySnippets(ctx, query, who)
	}

	finalPrompt := plan.FinalPrompt
	if finalPrompt == "" {
		finalPrompt = query
	}

	var b strings.Builder
	b.WriteString(finalPrompt)
	b.WriteString("\n\nTool outputs:\n")
	b.WriteString(strings.Join(outputs, "\n"))
	if len(snippets) > 0 {
		b.WriteString("\n\nRelevant memory:\n")
		b.WriteString(strings.Join(snippets, "\n"))
	}

	messages := []adapter.Message{
		{Role: "system", Content: "You are an assistant that uses tool outputs and memory to answer clearly."},
		{Role: "user", Content: b.String()},
	}
	return e.llm.Chat(ctx, messages, nil)
}

// runStep invokes one tool, containing panics at the step boundary
func (e *Executor) runStep(ctx context.Context, tool *tools.Tool, input string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Tool panicked",
				zap.String("tool", tool.Name),
				zap.Any("panic", r),
			)
			out = fmt.Sprintf("%s error: %v", tool.Name, r)
		}
	}()

	e.logger.Debug("Executing tool", zap.String("tool", tool.Name))
	return tool.Run(ctx, input)
}

// gatherMemorySnippets is the supplementary context pass for zero-step
// plans: core memory for creators, a semantic search over general memory,
// and the identity's two most recent personal entries.
func (e *Executor) gatherMemorySnippets(ctx context.Context, query string, who identity.Identity) []string {
	var snippets []string

	if who.IsCreator {
		if core, err := e.memory.Core.Get(ctx); err == nil && core != "" {
			snippets = append(snippets, "[Core memory]\n"+core)
		}
	}

	if results, err := e.memory.General.Search(ctx, query, constants.GeneralSearchTopK); err == nil {
		for _, r := range results {
			snippets = append(snippets, "[General memory] "+r.Content)
		}
	}

	if history, err := e.memory.User.History(ctx, who.ID); err == nil && len(history) > 0 {
		start := len(history) - 2
		if start < 0 {
			start = 0
		}
		for _, entry := range history[start:] {
			data, err := json.Marshal(entry)
			if err != nil {
				continue
			}
			snippets = append(snippets, "[User memory] "+string(data))
		}
	}

	return snippets
}

// buildStructuredArgs assembles the JSON argument object structured tools
// receive in place of the planner's free-text input.
func buildStructuredArgs(tool *tools.Tool, who identity.Identity, query string, channelID int64) string {
	args := map[string]any{
		"user_id":      who.ID,
		"requester_id": who.ID,
		"title":        DeriveTitle(query),
		"content":      query,
		"query":        query,
	}
	if tool.ChannelScoped {
		args["channel_id"] = channelID
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

var quotedTitlePattern = regexp.MustCompile(`"([^"]{3,40})"`)

// DeriveTitle derives a memory-entry title from free text: a quoted
// substring of reasonable length wins, else the first five words.
func DeriveTitle(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "untitled"
	}
	if m := quotedTitlePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	words := strings.Fields(text)
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " ")
}
