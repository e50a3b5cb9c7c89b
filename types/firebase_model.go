package types

import (
	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/identitytoolkit/v3"
)

type FirebaseApp struct {
	Admin         *firebase.App
	DB            *firestore.Client
	Storage       *storage.Client
	Auth          *auth.Client
	Identity      *identitytoolkit.Service
	MessageClient *messaging.Client
	TaskClient    *cloudtasks.Client
}

// Close releases the clients that hold connections.
func (a *FirebaseApp) Close() error {
	var firstErr error
	for _, closer := range []interface{ Close() error }{a.DB, a.Storage, a.TaskClient} {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
