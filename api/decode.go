package api

import (
	"fmt"

	"snapgram_api/types"
)

func decodeUser(doc *types.Document) (*types.User, error) {
	d := doc.Data
	user := &types.User{
		Id:        doc.Id,
		AccountId: stringField(d, types.FIREBASE_USERS_FIELDS_ACCOUNT_ID),
		Name:      stringField(d, types.FIREBASE_USERS_FIELDS_NAME),
		Username:  stringField(d, types.FIREBASE_USERS_FIELDS_USERNAME),
		Email:     stringField(d, types.FIREBASE_USERS_FIELDS_EMAIL),
		ImageUrl:  stringField(d, types.FIREBASE_USERS_FIELDS_IMAGE_URL),
		ImageId:   stringField(d, types.FIREBASE_USERS_FIELDS_IMAGE_ID),
		Bio:       stringField(d, types.FIREBASE_USERS_FIELDS_BIO),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	if user.AccountId == "" || user.Email == "" {
		return nil, fmt.Errorf("%w: user %s has no account", types.ErrMalformed, doc.Id)
	}

	return user, nil
}

func decodePost(doc *types.Document) (*types.Post, error) {
	d := doc.Data
	post := &types.Post{
		Id:        doc.Id,
		Creator:   stringField(d, types.FIREBASE_POSTS_FIELDS_CREATOR),
		Caption:   stringField(d, types.FIREBASE_POSTS_FIELDS_CAPTION),
		Location:  stringField(d, types.FIREBASE_POSTS_FIELDS_LOCATION),
		Tags:      convertInterfaceToArrayString(d[types.FIREBASE_POSTS_FIELDS_TAGS]),
		ImageUrl:  stringField(d, types.FIREBASE_POSTS_FIELDS_IMAGE_URL),
		ImageId:   stringField(d, types.FIREBASE_POSTS_FIELDS_IMAGE_ID),
		Likes:     convertInterfaceToArrayString(d[types.FIREBASE_POSTS_FIELDS_LIKES]),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	if post.Creator == "" {
		return nil, fmt.Errorf("%w: post %s has no creator", types.ErrMalformed, doc.Id)
	}
	if post.ImageId == "" || post.ImageUrl == "" {
		return nil, fmt.Errorf("%w: post %s has no image", types.ErrMalformed, doc.Id)
	}

	return post, nil
}

func decodeSave(doc *types.Document) (*types.Save, error) {
	save := &types.Save{
		Id:        doc.Id,
		User:      stringField(doc.Data, types.FIREBASE_SAVES_FIELDS_USER),
		Post:      stringField(doc.Data, types.FIREBASE_SAVES_FIELDS_POST),
		CreatedAt: doc.CreatedAt,
	}

	if save.User == "" || save.Post == "" {
		return nil, fmt.Errorf("%w: save %s has no user or post", types.ErrMalformed, doc.Id)
	}

	return save, nil
}

func stringField(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

// Firestore hands arrays back as []interface{}.
func convertInterfaceToArrayString(data interface{}) []string {
	switch v := data.(type) {
	case []string:
		result := make([]string, len(v))
		copy(result, v)
		return result
	case []interface{}:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return []string{}
	}
}
