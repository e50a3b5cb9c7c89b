package api_test

import (
	"context"
	"errors"
	"testing"

	"snapgram_api/api"
	"snapgram_api/api/apitest"
	"snapgram_api/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUsers(t *testing.T) {
	b := apitest.NewBackend()
	svc := b.Service()
	ctx := context.Background()

	signUp(t, svc, "Ada", "ada@example.com")
	signUp(t, svc, "Grace", "grace@example.com")
	signUp(t, svc, "Linus", "linus@example.com")

	users, err := svc.GetUsers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Linus", users[0].Name)

	users, err = svc.GetUsers(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = svc.GetUsers(ctx, -1)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestGetUserByID(t *testing.T) {
	b := apitest.NewBackend()
	svc := b.Service()
	ctx := context.Background()
	_, user := signUp(t, svc, "Ada", "ada@example.com")

	found, err := svc.GetUserByID(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, user, found)

	_, err = svc.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = svc.GetUserByID(ctx, "")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestUpdateUserKeepsInitialsAvatarWithoutFile(t *testing.T) {
	b := apitest.NewBackend()
	svc := b.Service()
	_, user := signUp(t, svc, "Ada", "ada@example.com")
	b.Reset()

	updated, err := svc.UpdateUser(context.Background(), api.UpdateUser{
		UserID:   user.Id,
		Name:     "Ada L.",
		Bio:      "Analyst",
		ImageURL: user.ImageUrl,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, "Analyst", updated.Bio)
	assert.Equal(t, user.ImageUrl, updated.ImageUrl)
	for _, c := range b.Calls() {
		assert.NotContains(t, c.Op, "Storage.")
	}
}

func TestUpdateUserReplacesAvatar(t *testing.T) {
	b := apitest.NewBackend()
	svc := b.Service()
	ctx := context.Background()
	_, user := signUp(t, svc, "Ada", "ada@example.com")

	// The initials avatar has no file to delete.
	first, err := svc.UpdateUser(ctx, api.UpdateUser{UserID: user.Id, Name: user.Name, ImageURL: user.ImageUrl, File: newImage()})
	require.NoError(t, err)
	require.NotEmpty(t, first.ImageId)
	assert.Empty(t, b.CallsTo("Storage.DeleteFile"))

	second, err := svc.UpdateUser(ctx, api.UpdateUser{
		UserID:   user.Id,
		Name:     user.Name,
		ImageID:  first.ImageId,
		ImageURL: first.ImageUrl,
		File:     newImage(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{second.ImageId}, b.Storage.Files())
	assert.Equal(t, []string{first.ImageId}, fileIDs(b.CallsTo("Storage.DeleteFile")))
}

func TestUpdateUserFailureDeletesUpload(t *testing.T) {
	b := apitest.NewBackend()
	svc := b.Service()
	_, user := signUp(t, svc, "Ada", "ada@example.com")
	b.Fail("Documents.Update:users", errors.New("boom"))

	_, err := svc.UpdateUser(context.Background(), api.UpdateUser{
		UserID:   user.Id,
		Name:     user.Name,
		ImageURL: user.ImageUrl,
		File:     newImage(),
	})
	require.Error(t, err)
	assert.Empty(t, b.Storage.Files())

	stored, _ := b.Documents.Peek(types.FIREBASE_USERS_COLLECTION, user.Id)
	assert.Equal(t, user.ImageUrl, stored.Data[types.FIREBASE_USERS_FIELDS_IMAGE_URL])
}

func TestUpdateUserFailureKeepsProfileAndOldAvatar(t *testing.T) {
	tests := []struct {
		failing       string
		deletesUpload bool
	}{
		{"Storage.CreateFile", false},
		{"Storage.GetFilePreview", true},
		{"Documents.Update:users", true},
	}

	for _, tt := range tests {
		t.Run(tt.failing, func(t *testing.T) {
			b := apitest.NewBackend()
			svc := b.Service()
			ctx := context.Background()
			_, user := signUp(t, svc, "Ada", "ada@example.com")

			current, err := svc.UpdateUser(ctx, api.UpdateUser{UserID: user.Id, Name: user.Name, ImageURL: user.ImageUrl, File: newImage()})
			require.NoError(t, err)
			before, _ := b.Documents.Peek(types.FIREBASE_USERS_COLLECTION, user.Id)
			b.Reset()

			b.Fail(tt.failing, errors.New("backend down"))

			_, err = svc.UpdateUser(ctx, api.UpdateUser{
				UserID:   user.Id,
				Name:     "Ada Lovelace",
				ImageID:  current.ImageId,
				ImageURL: current.ImageUrl,
				File:     newImage(),
			})
			require.Error(t, err)

			after, _ := b.Documents.Peek(types.FIREBASE_USERS_COLLECTION, user.Id)
			assert.Equal(t, before, after)
			assert.Equal(t, []string{current.ImageId}, b.Storage.Files())

			uploads := b.CallsTo("Storage.CreateFile")
			require.Len(t, uploads, 1)
			if tt.deletesUpload {
				assert.Equal(t, []string{uploads[0].Id}, fileIDs(b.CallsTo("Storage.DeleteFile")))
			} else {
				assert.Empty(t, b.CallsTo("Storage.DeleteFile"))
			}
		})
	}
}

func TestSetMessagingToken(t *testing.T) {
	b := apitest.NewBackend()
	svc := b.Service()
	ctx := context.Background()

	require.NoError(t, svc.SetMessagingToken(ctx, "u1", "token-1"))
	require.NoError(t, svc.SetMessagingToken(ctx, "u1", "token-2"))

	doc, ok := b.Documents.Peek(types.FIREBASE_MESSAGING_TOKEN_COLLECTION, "u1")
	require.True(t, ok)
	assert.Equal(t, "token-2", doc.Data[types.FIREBASE_MESSAGING_TOKEN_FIELDS_TOKEN])
	assert.Len(t, b.CallsTo("Documents.Create"), 1)

	assert.ErrorIs(t, svc.SetMessagingToken(ctx, "u1", ""), types.ErrInvalidInput)
}
