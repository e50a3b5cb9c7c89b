package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"snapgram_api/api/apitest"
	"snapgram_api/middlewares"
	"snapgram_api/tools"
	"snapgram_api/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
)

const (
	tasksAudience       = "http://api.test/tasks/cleanup"
	tasksServiceAccount = "tasks@snapgram-test.iam.gserviceaccount.com"
	tasksQueue          = "file-cleanup"
	tasksToken          = "signed-by-google"
)

// fakeTokenValidator accepts tasksToken for tasksAudience only.
type fakeTokenValidator struct{}

func (fakeTokenValidator) Validate(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
	if token != tasksToken || audience != tasksAudience {
		return nil, errors.New("idtoken: invalid token")
	}
	return &idtoken.Payload{
		Audience: audience,
		Claims:   map[string]interface{}{"email": tasksServiceAccount, "email_verified": true},
	}, nil
}

type like struct {
	postID  string
	likerID string
}

type fakeNotifier struct {
	likes []like
}

func (f *fakeNotifier) NotifyLike(ctx context.Context, post *types.Post, liker *types.User) error {
	f.likes = append(f.likes, like{postID: post.Id, likerID: liker.Id})
	return nil
}

type server struct {
	t        *testing.T
	router   *gin.Engine
	backend  *apitest.Backend
	notifier *fakeNotifier
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := apitest.NewBackend()
	notifier := &fakeNotifier{}

	r := gin.New()
	RegisterRoutes(r, Dependencies{
		Logger:   tools.NewZapLogger(zap.NewNop()),
		Service:  b.Service(),
		Files:    b.Storage,
		Notifier: notifier,
		Tasks: middlewares.CloudTasksAuth{
			Validator:      fakeTokenValidator{},
			Audience:       tasksAudience,
			ServiceAccount: tasksServiceAccount,
			Queue:          tasksQueue,
		},
	})

	return &server{t: t, router: r, backend: b, notifier: notifier}
}

func (s *server) do(req *http.Request, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) json(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, token)
}

func (s *server) form(method, path, token string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	s.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile(types.UPLOAD_FORM_FIELD, "photo.png")
		require.NoError(s.t, err)
		_, err = fw.Write(image)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req, token)
}

// signUp registers a user and returns its profile and session token.
func (s *server) signUp(name, email string) (types.User, string) {
	s.t.Helper()

	w := s.json(http.MethodPost, "/api/account", "", map[string]string{
		"name":     name,
		"username": strings.ToLower(name),
		"email":    email,
		"password": "password1",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var user types.User
	decode(s.t, w, &user)

	w = s.json(http.MethodPost, "/api/account/sessions", "", map[string]string{
		"email":    email,
		"password": "password1",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &resp)

	return user, resp.Token
}

func (s *server) createPost(token, caption string) types.Post {
	s.t.Helper()

	w := s.form(http.MethodPost, "/api/posts", token, map[string]string{
		"caption":  caption,
		"location": "Lisbon",
		"tags":     "a, b,b",
	}, testPNG(s.t, 40, 30))
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var post types.Post
	decode(s.t, w, &post)
	return post
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSignUpAndSession(t *testing.T) {
	s := newServer(t)
	user, token := s.signUp("Ada", "ada@example.com")

	w := s.json(http.MethodGet, "/api/account", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var current types.User
	decode(t, w, &current)
	assert.Equal(t, user.Id, current.Id)

	w = s.json(http.MethodGet, "/api/account/sessions/current", token, nil)
	assert.JSONEq(t, `{"active":true}`, w.Body.String())

	w = s.json(http.MethodDelete, "/api/account/sessions/current", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, w.Result().Cookies(), 1)
	assert.Equal(t, types.SESSION_COOKIE_NAME, w.Result().Cookies()[0].Name)
	assert.Empty(t, w.Result().Cookies()[0].Value)

	w = s.json(http.MethodGet, "/api/account", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.json(http.MethodGet, "/api/account/sessions/current", token, nil)
	assert.JSONEq(t, `{"active":false}`, w.Body.String())
}

func TestSignInSetsCookie(t *testing.T) {
	s := newServer(t)
	s.signUp("Ada", "ada@example.com")

	w := s.json(http.MethodPost, "/api/account/sessions", "", map[string]string{
		"email":    "ada@example.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, types.SESSION_COOKIE_NAME, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/account", nil)
	req.AddCookie(cookies[0])
	assert.Equal(t, http.StatusOK, s.do(req, "").Code)

	w = s.json(http.MethodPost, "/api/account/sessions", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignUpValidation(t *testing.T) {
	s := newServer(t)

	w := s.json(http.MethodPost, "/api/account", "", map[string]string{
		"name":     "A",
		"username": "a",
		"email":    "nope",
		"password": "1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be at least 2 characters")
}

func TestPostLifecycle(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp("Ada", "ada@example.com")
	_, other := s.signUp("Grace", "grace@example.com")

	post := s.createPost(token, "Sunset at the beach")
	assert.Equal(t, []string{"a", "b", "b"}, post.Tags)
	assert.True(t, s.backend.Storage.Has(post.ImageId))

	w := s.json(http.MethodGet, "/api/posts/"+post.Id, other, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.form(http.MethodPut, "/api/posts/"+post.Id, other, map[string]string{"caption": "mine now"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.form(http.MethodPut, "/api/posts/"+post.Id, token, map[string]string{"caption": "Sunrise"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated types.Post
	decode(t, w, &updated)
	assert.Equal(t, "Sunrise", updated.Caption)
	assert.Equal(t, post.ImageId, updated.ImageId)

	w = s.json(http.MethodDelete, "/api/posts/"+post.Id, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.json(http.MethodDelete, "/api/posts/"+post.Id, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, s.backend.Storage.Has(post.ImageId))

	w = s.json(http.MethodGet, "/api/posts/"+post.Id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestCreatePostRequiresImage(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp("Ada", "ada@example.com")

	w := s.form(http.MethodPost, "/api/posts", token, map[string]string{"caption": "no image"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.form(http.MethodPost, "/api/posts", "", map[string]string{"caption": "anonymous"}, testPNG(t, 2, 2))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, s.backend.Storage.Files())
}

func TestFeedAndSearch(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp("Ada", "ada@example.com")

	for _, caption := range []string{"one", "two", "three", "beach day"} {
		s.createPost(token, caption)
	}

	w := s.json(http.MethodGet, "/api/posts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page types.PostsPage
	decode(t, w, &page)
	assert.Len(t, page.Posts, 4)
	assert.Empty(t, page.NextCursor)
	assert.Equal(t, "beach day", page.Posts[0].Caption)

	w = s.json(http.MethodGet, "/api/posts/recent", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodGet, "/api/posts/search?q=beach", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found struct {
		Posts []types.Post `json:"posts"`
	}
	decode(t, w, &found)
	require.Len(t, found.Posts, 1)
	assert.Equal(t, "beach day", found.Posts[0].Caption)

	w = s.json(http.MethodGet, "/api/posts?cursor=missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLikeNotifiesCreator(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp("Ada", "ada@example.com")
	grace, other := s.signUp("Grace", "grace@example.com")
	post := s.createPost(token, "like me")

	w := s.json(http.MethodPut, "/api/posts/"+post.Id+"/likes", other, map[string][]string{"likes": {grace.Id}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []like{{postID: post.Id, likerID: grace.Id}}, s.notifier.likes)

	// Unliking does not notify.
	w = s.json(http.MethodPut, "/api/posts/"+post.Id+"/likes", other, map[string][]string{"likes": {}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.notifier.likes, 1)

	w = s.json(http.MethodGet, "/api/posts/liked", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"posts":[]}`, w.Body.String())
}

func TestLikeOnlyChangesOwnLike(t *testing.T) {
	s := newServer(t)
	ada, token := s.signUp("Ada", "ada@example.com")
	grace, other := s.signUp("Grace", "grace@example.com")
	post := s.createPost(token, "like me")

	w := s.json(http.MethodPut, "/api/posts/"+post.Id+"/likes", token, map[string][]string{"likes": {ada.Id}})
	require.Equal(t, http.StatusOK, w.Code)

	// A list without Ada only removes Grace's own like, never Ada's.
	w = s.json(http.MethodPut, "/api/posts/"+post.Id+"/likes", other, map[string][]string{"likes": {grace.Id}})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.json(http.MethodPut, "/api/posts/"+post.Id+"/likes", other, map[string][]string{"likes": {}})
	require.Equal(t, http.StatusOK, w.Code)

	var liked types.Post
	decode(t, w, &liked)
	assert.Equal(t, []string{ada.Id}, liked.Likes)

	w = s.json(http.MethodPut, "/api/posts/"+post.Id+"/likes", other, map[string][]string{"likes": {ada.Id, grace.Id, "mallory"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.json(http.MethodGet, "/api/posts/"+post.Id, other, nil)
	decode(t, w, &liked)
	assert.Equal(t, []string{ada.Id}, liked.Likes)
}

func TestMergeLikes(t *testing.T) {
	likes, err := mergeLikes([]string{"a", "b"}, []string{"a", "b", "me"}, "me")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "me"}, likes)

	likes, err = mergeLikes([]string{"a", "me", "b"}, nil, "me")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, likes)

	// Stale lists keep likers the client has not seen yet.
	likes, err = mergeLikes([]string{"a", "c"}, []string{"a", "me"}, "me")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "me"}, likes)

	_, err = mergeLikes([]string{"a"}, []string{"a", "x"}, "me")
	assert.ErrorIs(t, err, types.ErrForbidden)
}

func TestSaves(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp("Ada", "ada@example.com")
	_, other := s.signUp("Grace", "grace@example.com")
	post := s.createPost(token, "save me")

	w := s.json(http.MethodPost, "/api/saves", other, map[string]string{"postId": post.Id})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var save types.Save
	decode(t, w, &save)

	w = s.json(http.MethodGet, "/api/saves", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var saved struct {
		Posts []types.Post `json:"posts"`
	}
	decode(t, w, &saved)
	require.Len(t, saved.Posts, 1)
	assert.Equal(t, post.Id, saved.Posts[0].Id)

	w = s.json(http.MethodDelete, "/api/saves/"+save.Id, token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.json(http.MethodDelete, "/api/saves/"+save.Id, other, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.json(http.MethodPost, "/api/saves", other, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsers(t *testing.T) {
	s := newServer(t)
	ada, token := s.signUp("Ada", "ada@example.com")
	grace, _ := s.signUp("Grace", "grace@example.com")
	s.createPost(token, "first")

	w := s.json(http.MethodGet, "/api/users?limit=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Users []types.User `json:"users"`
	}
	decode(t, w, &list)
	require.Len(t, list.Users, 1)
	assert.Equal(t, grace.Id, list.Users[0].Id)

	w = s.json(http.MethodGet, "/api/users?limit=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodGet, "/api/users/"+ada.Id+"/posts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts struct {
		Posts []types.Post `json:"posts"`
	}
	decode(t, w, &posts)
	assert.Len(t, posts.Posts, 1)

	w = s.form(http.MethodPut, "/api/users/"+grace.Id, token, map[string]string{"name": "Not Grace"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.form(http.MethodPut, "/api/users/"+ada.Id, token, map[string]string{"name": "Ada L.", "bio": "Analyst"}, testPNG(t, 8, 8))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated types.User
	decode(t, w, &updated)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.NotEmpty(t, updated.ImageId)
	assert.True(t, s.backend.Storage.Has(updated.ImageId))
}

func TestMessagingToken(t *testing.T) {
	s := newServer(t)
	ada, token := s.signUp("Ada", "ada@example.com")

	w := s.json(http.MethodPost, "/api/messaging", token, map[string]string{"token": "device"})
	require.Equal(t, http.StatusOK, w.Code)

	doc, ok := s.backend.Documents.Peek(types.FIREBASE_MESSAGING_TOKEN_COLLECTION, ada.Id)
	require.True(t, ok)
	assert.Equal(t, "device", doc.Data[types.FIREBASE_MESSAGING_TOKEN_FIELDS_TOKEN])
}

func TestFilePreview(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp("Ada", "ada@example.com")
	post := s.createPost(token, "preview")

	path := strings.TrimPrefix(post.ImageUrl, apitest.FilesBaseURL)
	w := s.json(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 30, cfg.Width)
	assert.Equal(t, 30, cfg.Height)

	w = s.json(http.MethodGet, "/api/files/"+post.ImageId+"/preview?width=10&height=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cfg, _, err = image.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, 5, cfg.Height)

	w = s.json(http.MethodGet, "/api/files/"+post.ImageId+"/preview?gravity=sideways", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodGet, "/api/files/missing/preview", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInitialsAvatar(t *testing.T) {
	s := newServer(t)

	w := s.json(http.MethodGet, "/api/avatars/initials?name=Ada+Lovelace&size=64", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	cfg, err := png.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)

	w = s.json(http.MethodGet, "/api/avatars/initials", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodGet, "/api/avatars/initials?name=Ada&size=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (s *server) cleanupTask(fileID, queue, token string) *httptest.ResponseRecorder {
	s.t.Helper()

	body, err := json.Marshal(types.FileCleanupTask{FileId: fileID, Reason: "compensation"})
	require.NoError(s.t, err)

	req := httptest.NewRequest(http.MethodPost, types.CLOUD_TASKS_CLEANUP_PATH, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if queue != "" {
		req.Header.Set("X-CloudTasks-QueueName", queue)
	}
	return s.do(req, token)
}

func TestCleanupTaskRoute(t *testing.T) {
	s := newServer(t)
	_, err := s.backend.Storage.CreateFile(context.Background(), "orphan", types.File{Content: strings.NewReader("x")})
	require.NoError(t, err)

	w := s.cleanupTask("orphan", tasksQueue, tasksToken)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, s.backend.Storage.Has("orphan"))
}

func TestCleanupTaskRouteRejectsOtherCallers(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp("Ada", "ada@example.com")
	post := s.createPost(token, "keep my image")

	tests := []struct {
		name   string
		queue  string
		token  string
		status int
	}{
		{"anonymous", "", "", http.StatusForbidden},
		{"no token", tasksQueue, "", http.StatusUnauthorized},
		{"user session token", tasksQueue, token, http.StatusUnauthorized},
		{"other queue", "image-processing", tasksToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.cleanupTask(post.ImageId, tt.queue, tt.token)
			assert.Equal(t, tt.status, w.Code)
			assert.True(t, s.backend.Storage.Has(post.ImageId))
		})
	}
}

func TestCleanupTaskRouteKeepsLinkedImage(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp("Ada", "ada@example.com")
	post := s.createPost(token, "keep my image")

	w := s.cleanupTask(post.ImageId, tasksQueue, tasksToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"kept"}`, w.Body.String())
	assert.True(t, s.backend.Storage.Has(post.ImageId))

	w = s.json(http.MethodGet, "/api/files/"+post.ImageId+"/preview", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
