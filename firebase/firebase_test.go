package firebase

import (
	"errors"
	"testing"
	"time"

	"snapgram_api/api"
	"snapgram_api/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

var (
	_ api.Accounts  = (*Accounts)(nil)
	_ api.Documents = (*Documents)(nil)
	_ api.Storage   = (*Storage)(nil)
)

func TestWithKeywords(t *testing.T) {
	data := map[string]interface{}{
		types.FIREBASE_POSTS_FIELDS_CAPTION:  "Sunset at the Beach, beach!",
		types.FIREBASE_POSTS_FIELDS_LOCATION: "Lisbon",
		types.FIREBASE_POSTS_FIELDS_LIKES:    []string{},
	}

	fields := withKeywords(types.FIREBASE_POSTS_COLLECTION, data)

	assert.Equal(t, []string{"sunset", "at", "the", "beach"}, fields["caption_keywords"])
	assert.Equal(t, []string{"lisbon"}, fields["location_keywords"])
	assert.NotContains(t, data, "caption_keywords")

	saves := withKeywords(types.FIREBASE_SAVES_COLLECTION, map[string]interface{}{"user": "u1"})
	assert.Len(t, saves, 1)
}

func TestFromData(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	doc := fromData("p1", map[string]interface{}{
		types.FIREBASE_FIELDS_CREATED_AT:    created,
		types.FIREBASE_FIELDS_UPDATED_AT:    updated,
		types.FIREBASE_POSTS_FIELDS_CAPTION: "hello",
		"caption_keywords":                  []interface{}{"hello"},
	})

	assert.Equal(t, "p1", doc.Id)
	assert.Equal(t, created, doc.CreatedAt)
	assert.Equal(t, updated, doc.UpdatedAt)
	assert.Equal(t, map[string]interface{}{types.FIREBASE_POSTS_FIELDS_CAPTION: "hello"}, doc.Data)
}

func TestToSession(t *testing.T) {
	expires := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	s, err := toSession(&types.Document{
		Id: "s1",
		Data: map[string]interface{}{
			types.FIREBASE_SESSIONS_FIELDS_ACCOUNT_ID: "acc1",
			types.FIREBASE_SESSIONS_FIELDS_EXPIRES_AT: expires,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "acc1", s.AccountId)
	assert.Equal(t, expires, s.ExpiresAt)
	assert.Empty(t, s.Secret)

	_, err = toSession(&types.Document{Id: "s2", Data: map[string]interface{}{}})
	assert.ErrorIs(t, err, types.ErrMalformed)
}

func TestSignInError(t *testing.T) {
	err := signInError(&googleapi.Error{Code: 400, Message: "INVALID_PASSWORD"})
	assert.ErrorIs(t, err, types.ErrUnauthorized)
	assert.Contains(t, err.Error(), "INVALID_PASSWORD")

	err = signInError(&googleapi.Error{Code: 400, Message: "TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled"})
	assert.ErrorIs(t, err, types.ErrUnavailable)
	assert.NotErrorIs(t, err, types.ErrUnauthorized)

	err = signInError(&googleapi.Error{Code: 503})
	assert.ErrorIs(t, err, types.ErrUnavailable)

	plain := errors.New("boom")
	assert.Same(t, plain, signInError(plain))
}
