package api

import (
	"context"
	"errors"

	"snapgram_api/types"

	"cloud.google.com/go/logging"
)

type compensation struct {
	name string
	run  func(ctx context.Context) error
}

// saga records a compensation for every completed step of a multi-step
// operation and runs them in reverse order when a later step fails.
type saga struct {
	op            string
	s             *Service
	compensations []compensation
}

func (s *Service) newSaga(op string) *saga {
	return &saga{op: op, s: s}
}

func (g *saga) onFailure(name string, run func(ctx context.Context) error) {
	g.compensations = append(g.compensations, compensation{name: name, run: run})
}

// deleteFileOnFailure removes an uploaded file if the operation does not
// complete. A failed removal is handed to the cleanup queue.
func (g *saga) deleteFileOnFailure(fileID string) {
	g.onFailure("DeleteFile", func(ctx context.Context) error {
		return g.s.discardFile(ctx, g.op, fileID, "compensation")
	})
}

// abort compensates every completed step and returns cause wrapped for op.
func (g *saga) abort(ctx context.Context, cause error) error {
	// Compensate even when the caller has gone away.
	ctx = context.WithoutCancel(ctx)

	for i := len(g.compensations) - 1; i >= 0; i-- {
		c := g.compensations[i]
		if err := c.run(ctx); err != nil {
			g.s.logger.Log(logging.Entry{
				Severity: logging.Error,
				Payload:  "Compensation failed",
				Labels:   map[string]string{"op": g.op, "step": c.name, "cause": cause.Error(), "error": err.Error()},
			})
			continue
		}

		g.s.logger.Log(logging.Entry{
			Severity: logging.Info,
			Payload:  "Compensation completed",
			Labels:   map[string]string{"op": g.op, "step": c.name, "cause": cause.Error()},
		})
	}

	return wrap(g.op, cause)
}

// discardFile deletes a file nothing references anymore. When the delete
// fails the file id is queued for a retrying cleanup task; the error is only
// returned when the file could neither be deleted nor queued.
func (s *Service) discardFile(ctx context.Context, op, fileID, reason string) error {
	err := s.storage.DeleteFile(ctx, fileID)
	if err == nil || errors.Is(err, types.ErrNotFound) {
		return nil
	}

	labels := map[string]string{"op": op, "fileId": fileID, "reason": reason, "error": err.Error()}

	if s.cleanup == nil {
		s.logger.Log(logging.Entry{
			Severity: logging.Critical,
			Payload:  "Orphaned file left in storage",
			Labels:   labels,
		})
		return err
	}

	if qerr := s.cleanup.EnqueueFileCleanup(context.WithoutCancel(ctx), fileID, reason); qerr != nil {
		labels["queueError"] = qerr.Error()
		s.logger.Log(logging.Entry{
			Severity: logging.Critical,
			Payload:  "Orphaned file left in storage, cleanup could not be queued",
			Labels:   labels,
		})
		return errors.Join(err, qerr)
	}

	s.logger.Log(logging.Entry{
		Severity: logging.Warning,
		Payload:  "File deletion failed, cleanup queued",
		Labels:   labels,
	})
	return nil
}
