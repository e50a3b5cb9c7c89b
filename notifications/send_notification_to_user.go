package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"snapgram_api/tools"
	"snapgram_api/types"

	"cloud.google.com/go/logging"
	"firebase.google.com/go/messaging"
)

const NOTIFICATION_KIND_LIKE = "like"

// Sender is the part of *messaging.Client used to push messages.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TokenStore reads the registration tokens saved by SetMessagingToken.
type TokenStore interface {
	Get(ctx context.Context, collection, id string) (*types.Document, error)
}

type Notifier struct {
	sender Sender
	tokens TokenStore
	logger tools.Logger
}

func NewNotifier(sender Sender, tokens TokenStore, logger tools.Logger) *Notifier {
	return &Notifier{sender: sender, tokens: tokens, logger: logger}
}

// SendNotificationToUser pushes data to the device registered by userID. A
// user without a registered device is skipped without error.
func (n *Notifier) SendNotificationToUser(ctx context.Context, userID string, data types.NotificationMessage) error {
	doc, err := n.tokens.Get(ctx, types.FIREBASE_MESSAGING_TOKEN_COLLECTION, userID)
	if errors.Is(err, types.ErrNotFound) {
		n.logger.Log(logging.Entry{
			Severity: logging.Debug,
			Payload:  "No messaging token registered",
			Labels:   map[string]string{"userId": userID},
		})
		return nil
	}
	if err != nil {
		n.logger.Log(logging.Entry{
			Severity: logging.Error,
			Payload:  "Error getting registration token from firestore",
			Labels:   map[string]string{"userId": userID, "error": err.Error()},
		})
		return err
	}

	token, _ := doc.Data[types.FIREBASE_MESSAGING_TOKEN_FIELDS_TOKEN].(string)
	if token == "" {
		return fmt.Errorf("%w: registration token of %s is empty", types.ErrMalformed, userID)
	}

	dataJson, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error converting data to JSON: %w", err)
	}

	_, err = n.sender.Send(ctx, &messaging.Message{
		Data:  map[string]string{"data": string(dataJson)},
		Token: token,
	})
	if err != nil {
		n.logger.Log(logging.Entry{
			Severity: logging.Error,
			Payload:  "Error sending message to client",
			Labels:   map[string]string{"userId": userID, "error": err.Error()},
		})
		return fmt.Errorf("error sending message to client: %w", err)
	}

	return nil
}

// NotifyLike tells the creator of post that liker liked it. Likes of one's
// own post are not notified.
func (n *Notifier) NotifyLike(ctx context.Context, post *types.Post, liker *types.User) error {
	if post.Creator == liker.Id {
		return nil
	}

	return n.SendNotificationToUser(ctx, post.Creator, types.NotificationMessage{
		Kind:     NOTIFICATION_KIND_LIKE,
		PostId:   post.Id,
		ImageUrl: post.ImageUrl,
		UserId:   liker.Id,
		UserName: liker.Name,
	})
}
