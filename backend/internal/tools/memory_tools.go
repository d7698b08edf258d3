package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"rico-bot/backend/internal/memory"
)

// memoryArgs is the shared argument shape for memory and identity tools.
// Structured tools receive this JSON-encoded from the executor; the others
// expect the model to supply it verbatim.
type memoryArgs struct {
	UserID       int64          `json:"user_id"`
	RequesterID  int64          `json:"requester_id"`
	TargetUserID int64          `json:"target_user_id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Query        string         `json:"query"`
	ChannelID    int64          `json:"channel_id"`
	Limit        int            `json:"limit"`
	Name         string         `json:"name"`
	IsCreator    bool           `json:"is_creator"`
	Entry        map[string]any `json:"entry"`
	Metadata     map[string]any `json:"metadata"`
}

func parseArgs(input string) (memoryArgs, error) {
	var args memoryArgs
	if strings.TrimSpace(input) == "" {
		return args, nil
	}
	err := json.Unmarshal([]byte(input), &args)
	return args, err
}

// canActOn applies the single authorization policy: a requester may act on
// their own memory, and creators may act on anyone's.
func (ts *toolset) canActOn(requesterID, targetID int64) bool {
	return requesterID == targetID || ts.identity.IsCreator(requesterID)
}

// --- User memory ---

func (ts *toolset) getUserMemory(ctx context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		// Legacy forms: "requester:target" or a bare user id
		legacy := strings.TrimSpace(input)
		if parts := strings.SplitN(legacy, ":", 2); len(parts) == 2 {
			requester, rErr := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
			target, tErr := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
			if rErr != nil || tErr != nil {
				return fmt.Sprintf("Error: %v", err)
			}
			args = memoryArgs{RequesterID: requester, UserID: target}
		} else if id, idErr := strconv.ParseInt(legacy, 10, 64); idErr == nil {
			args = memoryArgs{RequesterID: id, UserID: id}
		} else {
			return fmt.Sprintf("Error: %v", err)
		}
	}
	if args.RequesterID == 0 {
		args.RequesterID = args.UserID
	}
	if !ts.canActOn(args.RequesterID, args.UserID) {
		return "Error: You can only fetch your own user memory."
	}

	record, err := ts.memory.User.Get(ctx, args.UserID)
	if err != nil {
		ts.logger.Error("get_user_memory failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	return mustJSON(record)
}

func (ts *toolset) addUserMemory(ctx context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if args.RequesterID == 0 {
		args.RequesterID = args.UserID
	}
	if !ts.canActOn(args.RequesterID, args.UserID) {
		return "Error: You can only add to your own user memory."
	}

	entry := args.Entry
	if entry == nil {
		entry = map[string]any{"title": args.Title, "content": args.Content}
	}
	if err := ts.memory.User.AppendHistory(ctx, args.UserID, entry); err != nil {
		ts.logger.Error("add_user_memory failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	return "User memory entry added."
}

func (ts *toolset) getUserMemoryByTitle(ctx context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if !ts.canActOn(args.RequesterID, args.UserID) {
		return "Error: You can only fetch your own user memory."
	}

	history, err := ts.memory.User.History(ctx, args.UserID)
	if err != nil {
		ts.logger.Error("get_user_memory_by_title failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	for _, entry := range history {
		if title, ok := entry["title"].(string); ok && title == args.Title {
			return mustJSON(entry)
		}
	}
	return "Not found."
}

func (ts *toolset) creatorAddUserMemory(ctx context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if !ts.identity.IsCreator(args.RequesterID) {
		return "Error: Only creators can add memory for other users."
	}
	if err := ts.memory.User.AppendHistory(ctx, args.TargetUserID, args.Entry); err != nil {
		ts.logger.Error("creator_add_user_memory failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Memory added for user %d by creator %d.", args.TargetUserID, args.RequesterID)
}

func (ts *toolset) creatorGetUserMemory(ctx context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if !ts.identity.IsCreator(args.RequesterID) {
		return "Error: Only creators can access other users' memory."
	}
	record, err := ts.memory.User.Get(ctx, args.TargetUserID)
	if err != nil {
		ts.logger.Error("creator_get_user_memory failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	return mustJSON(record)
}

// --- Core memory ---

func (ts *toolset) addCoreMemory(ctx context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if !ts.identity.IsCreator(args.UserID) {
		return "Error: Only creators can add core memory."
	}
	if err := ts.memory.Core.Add(ctx, args.Title, args.Content); err != nil {
		ts.logger.Error("add_core_memory failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	return "Core memory entry added."
}

func (ts *toolset) getCoreMemory(ctx context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if !ts.identity.IsCreator(args.UserID) {
		return "Error: Only creators can fetch core memory."
	}
	core, err := ts.memory.Core.Get(ctx)
	if err != nil {
		ts.logger.Error("get_core_memory failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	if core == "" {
		return "No core memory found."
	}
	return core
}

func (ts *toolset) getCoreMemoryByTitle(ctx context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if !ts.identity.IsCreator(args.UserID) {
		return "Error: Only creators can fetch core memory."
	}
	entries, err := ts.memory.Core.Entries(ctx)
	if err != nil {
		ts.logger.Error("get_core_memory_by_title failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	for _, entry := range entries {
		if entry.Title == args.Title {
			return mustJSON(entry)
		}
	}
	return "Not found."
}

// --- General memory ---

func (ts *toolset) addGeneralMemory(ctx context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if args.Content == "" {
		return "Error: content is required."
	}
	metadata := args.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["added_by"] = args.UserID
	metadata["title"] = args.Title

	if err := ts.memory.General.Add(ctx, args.Content, metadata); err != nil {
		ts.logger.Error("add_general_memory failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	return "General memory entry added."
}

func (ts *toolset) getGeneralMemory(ctx context.Context, input string) string {
	query := input
	if args, err := parseArgs(input); err == nil && args.Query != "" {
		query = args.Query
	}
	results, err := ts.memory.General.Search(ctx, query, 5)
	if err != nil {
		ts.logger.Error("get_general_memory failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	return mustJSON(results)
}

func (ts *toolset) getGeneralMemoryByTitle(ctx context.Context, input string) string {
	title := strings.TrimSpace(input)
	if args, err := parseArgs(input); err == nil && args.Title != "" {
		title = args.Title
	}
	results, err := ts.memory.General.Search(ctx, title, 10)
	if err != nil {
		ts.logger.Error("get_general_memory_by_title failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	matches := make([]memory.SearchResult, 0, len(results))
	for _, r := range results {
		if t, ok := r.Metadata["title"].(string); ok && t == title {
			matches = append(matches, r)
		}
	}
	return mustJSON(matches)
}

// --- Channel context ---

func (ts *toolset) getChannelContext(ctx context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if args.ChannelID == 0 {
		return "Error: channel_id is required."
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	transcript, err := ts.memory.Channel.Formatted(ctx, args.ChannelID, limit)
	if err != nil {
		ts.logger.Error("get_channel_context failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	return transcript
}

func (ts *toolset) searchChannelHistory(ctx context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if args.ChannelID == 0 {
		return "Error: channel_id is required."
	}
	if args.Query == "" {
		return "Error: query is required."
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}
	matches, err := ts.memory.Channel.Search(ctx, args.ChannelID, args.Query, limit)
	if err != nil {
		ts.logger.Error("search_channel_history failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No messages found matching '%s' in channel history.", args.Query)
	}
	lines := make([]string, 0, len(matches))
	for _, msg := range matches {
		lines = append(lines, formatSearchHit(msg))
	}
	return strings.Join(lines, "\n")
}

func formatSearchHit(msg memory.ChannelMessage) string {
	timeStr := "??:??"
	if msg.Timestamp > 0 {
		timeStr = time.Unix(msg.Timestamp, 0).Format("15:04")
	}
	return fmt.Sprintf("[%s] %s: %s", timeStr, msg.Author, msg.Content)
}

// --- Identity ---

func (ts *toolset) identifyUser(_ context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if args.UserID == 0 {
		return "Error: user_id is required."
	}
	who := ts.identity.Lookup(args.UserID)
	rank := "Regular User"
	if who.IsCreator {
		rank = "OG Creator"
	}
	return mustJSON(map[string]any{
		"user_id":      who.ID,
		"name":         who.Name,
		"is_creator":   who.IsCreator,
		"creator_rank": rank,
	})
}

func (ts *toolset) addUserIdentity(_ context.Context, input string) string {
	args, err := parseArgs(input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if args.UserID == 0 {
		return "Error: user_id is required."
	}
	if args.Name == "" {
		return "Error: name is required."
	}
	if !ts.identity.IsCreator(args.RequesterID) {
		return "Error: Only creators can add user identities."
	}
	ts.identity.Add(args.UserID, args.Name, args.IsCreator)
	return fmt.Sprintf("User identity added: %s (ID: %d)", args.Name, args.UserID)
}

func (ts *toolset) getCreatorInfo(_ context.Context, _ string) string {
	creators := ts.identity.Creators()
	info := make([]map[string]any, 0, len(creators))
	for _, c := range creators {
		info = append(info, map[string]any{
			"user_id": c.ID,
			"name":    c.Name,
			"status":  "Active Creator",
		})
	}
	return mustJSON(info)
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return string(data)
}
