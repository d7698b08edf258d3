package agent

import (
	"context"

	"go.uber.org/zap"

	"rico-bot/backend/internal/identity"
	"rico-bot/backend/internal/memory"
	"rico-bot/backend/internal/tools"
	"rico-bot/backend/pkg/logger"
)

// Agent ties the planner and executor together behind one entry point
type Agent struct {
	planner  *Planner
	executor *Executor
	logger   *zap.Logger
}

// New creates the full agent pipeline
func New(llm ChatClient, registry *tools.Registry, mem *memory.Manager) *Agent {
	return &Agent{
		planner:  NewPlanner(llm),
		executor: NewExecutor(registry, mem, llm),
		logger:   logger.Get(),
	}
}

// Run handles one addressed query end to end: plan, execute the bounded
// tool sequence, and generate the final answer.
func (a *Agent) Run(ctx context.Context, query string, who identity.Identity, channelID int64) (string, error) {
	plan := a.planner.Plan(ctx, query)

	a.logger.Debug("Plan produced",
		zap.Int64("user_id", who.ID),
		zap.Int("steps", len(plan.Steps)),
	)

	return a.executor.Execute(ctx, plan, query, who, channelID)
}
