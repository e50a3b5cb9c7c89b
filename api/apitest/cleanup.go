package apitest

import (
	"context"
	"sync"

	"snapgram_api/types"
)

// Cleanup records the orphaned files handed to the cleanup queue.
type Cleanup struct {
	rec *Recorder

	mu     sync.Mutex
	queued []types.FileCleanupTask
}

func (c *Cleanup) EnqueueFileCleanup(ctx context.Context, fileID, reason string) error {
	if err := c.rec.record("Cleanup.EnqueueFileCleanup", "", fileID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.queued = append(c.queued, types.FileCleanupTask{FileId: fileID, Reason: reason})

	return nil
}

// Queued returns the tasks enqueued so far.
func (c *Cleanup) Queued() []types.FileCleanupTask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.FileCleanupTask(nil), c.queued...)
}
