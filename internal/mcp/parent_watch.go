package mcp

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// WatchParent cancels the server once its parent process goes away, so an
// MCP server launched by an editor does not outlive it. It polls the parent
// pid and never reads stdin: the stdio transport owns it.
func WatchParent(ctx context.Context, logger *slog.Logger, cancel context.CancelFunc) {
	ppid := os.Getppid()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					logger.Warn("parent process exited, shutting down", "parent_pid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
