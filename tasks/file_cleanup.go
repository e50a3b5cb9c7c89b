package tasks

import (
	"context"
	"errors"
	"net/http"

	"snapgram_api/tools"
	"snapgram_api/types"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
)

// OrphanRemover deletes files nothing links to. *api.Service satisfies it.
type OrphanRemover interface {
	DeleteUnreferencedFile(ctx context.Context, fileID string) error
}

// FileCleanupTaskHandler deletes the file named by a cleanup task unless a
// post or profile still links it. Cloud Tasks retries every answer outside
// 2xx, so only failures worth retrying get one.
func FileCleanupTaskHandler(logger tools.Logger, files OrphanRemover) gin.HandlerFunc {
	return func(c *gin.Context) {
		labels := map[string]string{
			"task":    c.GetHeader("X-CloudTasks-TaskName"),
			"attempt": c.GetHeader("X-CloudTasks-TaskRetryCount"),
		}

		var task types.FileCleanupTask
		if err := c.ShouldBindJSON(&task); err != nil || task.FileId == "" {
			labels["status"] = "discarded"
			logger.Log(logging.Entry{
				Severity: logging.Error,
				Payload:  "Discarding malformed file cleanup task",
				Labels:   labels,
			})
			c.JSON(http.StatusOK, gin.H{"status": "discarded"})
			return
		}

		labels["fileId"] = task.FileId
		labels["reason"] = task.Reason

		err := files.DeleteUnreferencedFile(c.Request.Context(), task.FileId)
		if errors.Is(err, types.ErrConflict) {
			labels["error"] = err.Error()
			logger.Log(logging.Entry{
				Severity: logging.Warning,
				Payload:  "File still referenced, cleanup skipped",
				Labels:   labels,
			})
			c.JSON(http.StatusOK, gin.H{"status": "kept"})
			return
		}
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			labels["error"] = err.Error()
			logger.Log(logging.Entry{
				Severity: logging.Warning,
				Payload:  "File cleanup failed, task will be retried",
				Labels:   labels,
			})
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "cleanup failed"})
			return
		}

		logger.Log(logging.Entry{
			Severity: logging.Info,
			Payload:  "Orphaned file removed",
			Labels:   labels,
		})
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
