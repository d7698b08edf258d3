package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"rico-bot/backend/internal/constants"
)

// fileStore appends content to the local append-only data file
func (ts *toolset) fileStore(_ context.Context, content string) string {
	if strings.TrimSpace(content) == "" {
		return "Error: Empty content"
	}
	ts.logger.Info("file_store called", zap.Int("length", len(content)))

	path := "data_store.txt"
	if ts.config != nil && ts.config.FileStorePath != "" {
		path = ts.config.FileStorePath
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return "Error: Permission denied to write file"
		}
		return fmt.Sprintf("Error: File system error - %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString(content + "\n"); err != nil {
		return fmt.Sprintf("Error: File system error - %v", err)
	}
	return "Stored content."
}

// codeExecute runs submitted code in a short-lived subprocess. Disabled by
// default; when enabled it writes the payload to a temp file, runs it under
// a hard wall-clock timeout, and always cleans the temp file up.
func (ts *toolset) codeExecute(ctx context.Context, code string) string {
	if ts.config == nil || !ts.config.CodeExecEnabled {
		return "Error: code execution is disabled by default."
	}
	if strings.TrimSpace(code) == "" {
		return "Error: Empty code"
	}
	ts.logger.Info("code_execute invoked")

	tmp, err := os.CreateTemp("", "snippet-*.py")
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			ts.logger.Warn("Failed to clean up temporary file", zap.String("path", tmpPath))
		}
	}()

	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		return fmt.Sprintf("Error: %v", err)
	}
	tmp.Close()

	execCtx, cancel := context.WithTimeout(ctx, constants.CodeExecTimeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(execCtx, "python3", tmpPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	ts.logger.Info("Code executed", zap.Duration("elapsed", time.Since(start)))

	if execCtx.Err() == context.DeadlineExceeded {
		return "Error: execution timed out."
	}

	output := stdout.String() + stderr.String()
	if runErr != nil && output == "" {
		if errors.Is(runErr, os.ErrPermission) {
			return "Error: Permission denied to execute code"
		}
		return fmt.Sprintf("Error: Code execution failed - %v", runErr)
	}
	if output == "" {
		return "No output."
	}
	return output
}
