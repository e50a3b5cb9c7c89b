// Package tasks queues and runs the retried deletion of orphaned files.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"snapgram_api/tools"
	"snapgram_api/types"

	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"cloud.google.com/go/logging"
	"github.com/googleapis/gax-go/v2"
)

// TaskCreator is the part of *cloudtasks.Client the queue uses.
type TaskCreator interface {
	CreateTask(ctx context.Context, req *taskspb.CreateTaskRequest, opts ...gax.CallOption) (*taskspb.Task, error)
}

// CleanupQueue hands orphaned file ids to a Cloud Tasks queue whose tasks
// call FileCleanupTaskHandler until the file is gone.
type CleanupQueue struct {
	client         TaskCreator
	queuePath      string
	handlerURL     string
	serviceAccount string
	logger         tools.Logger
}

// NewCleanupQueue targets handlerURL from queuePath. When serviceAccount is
// set the requests carry an OIDC token issued for it with handlerURL as
// audience, which CloudTasksMiddleware checks.
func NewCleanupQueue(client TaskCreator, queuePath, handlerURL, serviceAccount string, logger tools.Logger) *CleanupQueue {
	return &CleanupQueue{
		client:         client,
		queuePath:      queuePath,
		handlerURL:     handlerURL,
		serviceAccount: serviceAccount,
		logger:         logger,
	}
}

func (q *CleanupQueue) EnqueueFileCleanup(ctx context.Context, fileID, reason string) error {
	payload, err := json.Marshal(types.FileCleanupTask{FileId: fileID, Reason: reason})
	if err != nil {
		return fmt.Errorf("error serializing cleanup task: %w", err)
	}

	httpRequest := &taskspb.HttpRequest{
		HttpMethod: taskspb.HttpMethod_POST,
		Url:        q.handlerURL,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       payload,
	}
	if q.serviceAccount != "" {
		httpRequest.AuthorizationHeader = &taskspb.HttpRequest_OidcToken{
			OidcToken: &taskspb.OidcToken{ServiceAccountEmail: q.serviceAccount, Audience: q.handlerURL},
		}
	}

	task, err := q.client.CreateTask(ctx, &taskspb.CreateTaskRequest{
		Parent: q.queuePath,
		Task: &taskspb.Task{
			MessageType: &taskspb.Task_HttpRequest{HttpRequest: httpRequest},
		},
	})
	if err != nil {
		q.logger.Log(logging.Entry{
			Severity: logging.Error,
			Payload:  "Error creating file cleanup task",
			Labels:   map[string]string{"fileId": fileID, "error": err.Error()},
		})
		return fmt.Errorf("error creating file cleanup task: %w", err)
	}

	q.logger.Log(logging.Entry{
		Severity: logging.Info,
		Payload:  "File cleanup task created",
		Labels:   map[string]string{"fileId": fileID, "task": task.GetName()},
	})

	return nil
}
