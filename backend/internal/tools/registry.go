// Package tools holds the registry of named capabilities the executor can
// dispatch to. Every tool validates its own input, enforces its own
// authorization, and flattens every failure into an "Error: ..." string so
// nothing escapes its boundary.
package tools

import (
	"context"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"rico-bot/backend/internal/constants"
	"rico-bot/backend/internal/identity"
	"rico-bot/backend/internal/memory"
	"rico-bot/backend/pkg/config"
	"rico-bot/backend/pkg/logger"
)

// Tool name constants
const (
	ToolWebSearch    = "web_search"
	ToolBraveSearch  = "brave_search" // alias for web_search
	ToolCalculate    = "calculate"
	ToolFileStore    = "file_store"
	ToolCodeExecute  = "code_execute"

	ToolGetUserMemory        = "get_user_memory"
	ToolAddUserMemory        = "add_user_memory"
	ToolGetUserMemoryByTitle = "get_user_memory_by_title"
	ToolCreatorAddUserMemory = "creator_add_user_memory"
	ToolCreatorGetUserMemory = "creator_get_user_memory"

	ToolAddCoreMemory        = "add_core_memory"
	ToolGetCoreMemory        = "get_core_memory"
	ToolGetCoreMemoryByTitle = "get_core_memory_by_title"

	ToolAddGeneralMemory        = "add_general_memory"
	ToolGetGeneralMemory        = "get_general_memory"
	ToolGetGeneralMemoryByTitle = "get_general_memory_by_title"

	ToolGetChannelContext    = "get_channel_context"
	ToolSearchChannelHistory = "search_channel_history"

	ToolIdentifyUser    = "identify_user"
	ToolAddUserIdentity = "add_user_identity"
	ToolGetCreatorInfo  = "get_creator_info"
)

// RunFunc executes one tool invocation. It never panics past its boundary
// and renders every failure as an "Error: ..." string.
type RunFunc func(ctx context.Context, input string) string

// Tool is one named capability
type Tool struct {
	Name string
	// Structured tools discard the planner's free-text input; the executor
	// builds a JSON argument object from the acting identity and query.
	Structured bool
	// ChannelScoped structured tools also receive the channel id captured
	// at the start of the execution.
	ChannelScoped bool
	Run           RunFunc
}

// Deps carries the collaborators tools are built over
type Deps struct {
	Memory   *memory.Manager
	Identity *identity.Registry
	Config   *config.Config
}

// Registry is an immutable name -> tool mapping, safe for concurrent reads
type Registry struct {
	tools  map[string]*Tool
	logger *zap.Logger
}

// NewRegistry builds the full tool set
func NewRegistry(deps Deps) *Registry {
	ts := &toolset{
		memory:   deps.Memory,
		identity: deps.Identity,
		config:   deps.Config,
		httpClient: &http.Client{
			Timeout: constants.WebSearchTimeout,
		},
		logger: logger.Get(),
	}

	tools := []*Tool{
		{Name: ToolWebSearch, Run: ts.webSearch},
		{Name: ToolBraveSearch, Run: ts.webSearch},
		{Name: ToolCalculate, Run: ts.calculate},
		{Name: ToolFileStore, Run: ts.fileStore},
		{Name: ToolCodeExecute, Run: ts.codeExecute},

		{Name: ToolGetUserMemory, Structured: true, Run: ts.getUserMemory},
		{Name: ToolAddUserMemory, Structured: true, Run: ts.addUserMemory},
		{Name: ToolGetUserMemoryByTitle, Run: ts.getUserMemoryByTitle},
		{Name: ToolCreatorAddUserMemory, Run: ts.creatorAddUserMemory},
		{Name: ToolCreatorGetUserMemory, Run: ts.creatorGetUserMemory},

		{Name: ToolAddCoreMemory, Structured: true, Run: ts.addCoreMemory},
		{Name: ToolGetCoreMemory, Structured: true, Run: ts.getCoreMemory},
		{Name: ToolGetCoreMemoryByTitle, Run: ts.getCoreMemoryByTitle},

		{Name: ToolAddGeneralMemory, Structured: true, Run: ts.addGeneralMemory},
		{Name: ToolGetGeneralMemory, Structured: true, Run: ts.getGeneralMemory},
		{Name: ToolGetGeneralMemoryByTitle, Run: ts.getGeneralMemoryByTitle},

		{Name: ToolGetChannelContext, Structured: true, ChannelScoped: true, Run: ts.getChannelContext},
		{Name: ToolSearchChannelHistory, Structured: true, ChannelScoped: true, Run: ts.searchChannelHistory},

		{Name: ToolIdentifyUser, Structured: true, Run: ts.identifyUser},
		{Name: ToolAddUserIdentity, Run: ts.addUserIdentity},
		{Name: ToolGetCreatorInfo, Run: ts.getCreatorInfo},
	}

	byName := make(map[string]*Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}

	return &Registry{tools: byName, logger: logger.Get()}
}

// Get resolves a tool by name
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names lists all registered tool names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// toolset holds shared tool dependencies; individual tool files hang their
// implementations off it.
type toolset struct {
	memory     *memory.Manager
	identity   *identity.Registry
	config     *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}
