package api

import (
	"context"
	"fmt"

	"snapgram_api/tools"
	"snapgram_api/types"

	"cloud.google.com/go/logging"
)

// CreatePost uploads the image, links its preview URL and stores the post.
// The upload is deleted again if either later step fails.
func (s *Service) CreatePost(ctx context.Context, in NewPost) (*types.Post, error) {
	const op = "CreatePost"

	if err := s.validateInput(op, in); err != nil {
		return nil, err
	}

	image, err := s.uploadImage(ctx, op, in.File)
	if err != nil {
		return nil, err
	}

	g := s.newSaga(op)
	g.deleteFileOnFailure(image.id)

	if image.url, err = s.storage.GetFilePreview(ctx, image.id, s.previews); err != nil {
		return nil, g.abort(ctx, err)
	}

	postID, err := tools.NewID()
	if err != nil {
		return nil, g.abort(ctx, err)
	}

	doc, err := s.documents.Create(ctx, types.FIREBASE_POSTS_COLLECTION, postID, map[string]interface{}{
		types.FIREBASE_POSTS_FIELDS_CREATOR:   in.CreatorID,
		types.FIREBASE_POSTS_FIELDS_CAPTION:   in.Caption,
		types.FIREBASE_POSTS_FIELDS_LOCATION:  in.Location,
		types.FIREBASE_POSTS_FIELDS_TAGS:      SplitTags(in.Tags),
		types.FIREBASE_POSTS_FIELDS_IMAGE_URL: image.url,
		types.FIREBASE_POSTS_FIELDS_IMAGE_ID:  image.id,
		types.FIREBASE_POSTS_FIELDS_LIKES:     []string{},
	})
	if err != nil {
		return nil, g.abort(ctx, err)
	}

	post, err := decodePost(doc)
	if err != nil {
		return nil, wrap(op, err)
	}

	return post, nil
}

type imageRef struct {
	id  string
	url string
}

func (s *Service) uploadImage(ctx context.Context, op string, file *types.File) (imageRef, error) {
	fileID, err := tools.NewID()
	if err != nil {
		return imageRef{}, wrap(op, err)
	}

	stored, err := s.storage.CreateFile(ctx, fileID, *file)
	if err != nil {
		return imageRef{}, wrap(op, err)
	}

	return imageRef{id: stored.Id}, nil
}

// UpdatePost rewrites the text fields of a post and, when File is set,
// replaces its image. The new upload is deleted if the update fails; the old
// image is deleted only after the update succeeded.
func (s *Service) UpdatePost(ctx context.Context, in UpdatePost) (*types.Post, error) {
	const op = "UpdatePost"

	if err := s.validateInput(op, in); err != nil {
		return nil, err
	}

	image := imageRef{id: in.ImageID, url: in.ImageURL}
	g := s.newSaga(op)

	if in.File != nil {
		uploaded, err := s.uploadImage(ctx, op, in.File)
		if err != nil {
			return nil, err
		}
		g.deleteFileOnFailure(uploaded.id)

		if uploaded.url, err = s.storage.GetFilePreview(ctx, uploaded.id, s.previews); err != nil {
			return nil, g.abort(ctx, err)
		}
		image = uploaded
	}

	doc, err := s.documents.Update(ctx, types.FIREBASE_POSTS_COLLECTION, in.PostID, map[string]interface{}{
		types.FIREBASE_POSTS_FIELDS_CAPTION:   in.Caption,
		types.FIREBASE_POSTS_FIELDS_LOCATION:  in.Location,
		types.FIREBASE_POSTS_FIELDS_TAGS:      SplitTags(in.Tags),
		types.FIREBASE_POSTS_FIELDS_IMAGE_URL: image.url,
		types.FIREBASE_POSTS_FIELDS_IMAGE_ID:  image.id,
	})
	if err != nil {
		return nil, g.abort(ctx, err)
	}

	if in.File != nil && in.ImageID != image.id {
		_ = s.discardFile(ctx, op, in.ImageID, "replaced")
	}

	post, err := decodePost(doc)
	if err != nil {
		return nil, wrap(op, err)
	}

	return post, nil
}

// DeletePost deletes the post, its image and the saves pointing at it.
// imageID must be the image of the post.
func (s *Service) DeletePost(ctx context.Context, postID, imageID string) error {
	const op = "DeletePost"

	if postID == "" || imageID == "" {
		return invalid(op, "post id and image id are required")
	}

	post, err := s.GetPostByID(ctx, postID)
	if err != nil {
		return wrap(op, err)
	}

	if post.ImageId != imageID {
		return invalid(op, "image %s does not belong to post %s", imageID, postID)
	}

	if err := s.documents.Delete(ctx, types.FIREBASE_POSTS_COLLECTION, postID); err != nil {
		return wrap(op, err)
	}

	_ = s.discardFile(ctx, op, imageID, "post deleted")
	s.deleteSavesOfPost(ctx, postID)

	return nil
}

func (s *Service) deleteSavesOfPost(ctx context.Context, postID string) {
	q := types.Query{}.Where(types.FIREBASE_SAVES_FIELDS_POST, postID)

	docs, err := s.documents.List(ctx, types.FIREBASE_SAVES_COLLECTION, q)
	if err != nil {
		s.logger.Log(logging.Entry{
			Severity: logging.Warning,
			Payload:  "Error listing saves of deleted post",
			Labels:   map[string]string{"postId": postID, "error": err.Error()},
		})
		return
	}

	for _, doc := range docs {
		if err := s.documents.Delete(ctx, types.FIREBASE_SAVES_COLLECTION, doc.Id); err != nil {
			s.logger.Log(logging.Entry{
				Severity: logging.Warning,
				Payload:  "Error deleting save of deleted post",
				Labels:   map[string]string{"postId": postID, "saveId": doc.Id, "error": err.Error()},
			})
		}
	}
}

// LikePost overwrites the liker list of a post. Concurrent calls race; the
// last write wins.
func (s *Service) LikePost(ctx context.Context, postID string, likes []string) (*types.Post, error) {
	const op = "LikePost"

	if postID == "" {
		return nil, invalid(op, "post id is required")
	}
	if likes == nil {
		likes = []string{}
	}

	doc, err := s.documents.Update(ctx, types.FIREBASE_POSTS_COLLECTION, postID, map[string]interface{}{
		types.FIREBASE_POSTS_FIELDS_LIKES: likes,
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	post, err := decodePost(doc)
	if err != nil {
		return nil, wrap(op, err)
	}

	return post, nil
}

func (s *Service) GetPostByID(ctx context.Context, id string) (*types.Post, error) {
	const op = "GetPostByID"

	if id == "" {
		return nil, invalid(op, "post id is required")
	}

	doc, err := s.documents.Get(ctx, types.FIREBASE_POSTS_COLLECTION, id)
	if err != nil {
		return nil, wrap(op, err)
	}

	post, err := decodePost(doc)
	if err != nil {
		return nil, wrap(op, err)
	}

	return post, nil
}

func (s *Service) GetRecentPosts(ctx context.Context) ([]types.Post, error) {
	q := types.Query{}.
		Order(types.FIREBASE_FIELDS_CREATED_AT, types.Desc).
		WithLimit(types.RECENT_POSTS_LIMIT)

	return s.listPosts(ctx, "GetRecentPosts", q)
}

// GetInfinitePosts returns the page after cursor, newest update first. An
// empty cursor starts at the top.
func (s *Service) GetInfinitePosts(ctx context.Context, cursor string) (*types.PostsPage, error) {
	q := types.Query{}.
		Order(types.FIREBASE_FIELDS_UPDATED_AT, types.Desc).
		WithLimit(types.INFINITE_POSTS_LIMIT).
		After(cursor)

	posts, err := s.listPosts(ctx, "GetInfinitePosts", q)
	if err != nil {
		return nil, err
	}

	page := &types.PostsPage{Posts: posts}
	if len(posts) == types.INFINITE_POSTS_LIMIT {
		page.NextCursor = posts[len(posts)-1].Id
	}

	return page, nil
}

// SearchPosts matches term against captions, then against locations when no
// caption matches.
func (s *Service) SearchPosts(ctx context.Context, term string) ([]types.Post, error) {
	const op = "SearchPosts"

	posts, err := s.listPosts(ctx, op, types.Query{}.WhereSearch(types.FIREBASE_POSTS_FIELDS_CAPTION, term))
	if err != nil || len(posts) > 0 {
		return posts, err
	}

	return s.listPosts(ctx, op, types.Query{}.WhereSearch(types.FIREBASE_POSTS_FIELDS_LOCATION, term))
}

// GetUserPosts lists the posts of a creator. It does nothing without an id.
func (s *Service) GetUserPosts(ctx context.Context, userID string) ([]types.Post, error) {
	if userID == "" {
		return nil, nil
	}

	q := types.Query{}.
		Where(types.FIREBASE_POSTS_FIELDS_CREATOR, userID).
		Order(types.FIREBASE_FIELDS_CREATED_AT, types.Desc)

	return s.listPosts(ctx, "GetUserPosts", q)
}

func (s *Service) GetLikedPosts(ctx context.Context, userID string) ([]types.Post, error) {
	const op = "GetLikedPosts"

	if userID == "" {
		return nil, invalid(op, "user id is required")
	}

	q := types.Query{}.
		WhereContains(types.FIREBASE_POSTS_FIELDS_LIKES, userID).
		Order(types.FIREBASE_FIELDS_CREATED_AT, types.Desc)

	return s.listPosts(ctx, op, q)
}

func (s *Service) listPosts(ctx context.Context, op string, q types.Query) ([]types.Post, error) {
	docs, err := s.documents.List(ctx, types.FIREBASE_POSTS_COLLECTION, q)
	if err != nil {
		return nil, wrap(op, err)
	}

	posts := make([]types.Post, 0, len(docs))
	for i := range docs {
		post, err := decodePost(&docs[i])
		if err != nil {
			return nil, wrap(op, fmt.Errorf("listing posts: %w", err))
		}
		posts = append(posts, *post)
	}

	return posts, nil
}
