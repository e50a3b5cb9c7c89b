package api_test

import (
	"context"
	"strings"
	"testing"

	"snapgram_api/api"
	"snapgram_api/api/apitest"
	"snapgram_api/session"
	"snapgram_api/types"

	"github.com/stretchr/testify/require"
)

func newImage() *types.File {
	return &types.File{
		Name:        "photo.jpg",
		ContentType: "image/jpeg",
		Size:        5,
		Content:     strings.NewReader("image"),
	}
}

func newPost(t *testing.T, svc *api.Service, creator, caption, location string) *types.Post {
	t.Helper()

	post, err := svc.CreatePost(context.Background(), api.NewPost{
		CreatorID: creator,
		Caption:   caption,
		Location:  location,
		Tags:      "travel",
		File:      newImage(),
	})
	require.NoError(t, err)

	return post
}

// signUp creates an account with its profile and returns a context carrying a
// fresh session of it.
func signUp(t *testing.T, svc *api.Service, name, email string) (context.Context, *types.User) {
	t.Helper()
	ctx := context.Background()

	user, err := svc.CreateUserAccount(ctx, api.NewUser{
		Name:     name,
		Username: strings.ToLower(strings.Fields(name)[0]),
		Email:    email,
		Password: "password1",
	})
	require.NoError(t, err)

	s, err := svc.SignInAccount(ctx, api.SignIn{Email: email, Password: "password1"})
	require.NoError(t, err)

	return session.NewContext(ctx, s), user
}

func fileIDs(calls []apitest.Call) []string {
	ids := make([]string, 0, len(calls))
	for _, c := range calls {
		ids = append(ids, c.Id)
	}
	return ids
}
