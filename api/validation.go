package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"snapgram_api/types"

	"github.com/go-playground/validator/v10"
)

type NewUser struct {
	Name     string `json:"name" validate:"required,min=2"`
	Username string `json:"username" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignIn struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type NewPost struct {
	CreatorID string      `json:"creator" validate:"required"`
	Caption   string      `json:"caption" validate:"max=2200"`
	Location  string      `json:"location" validate:"max=1000"`
	Tags      string      `json:"tags" validate:"max=1000"`
	File      *types.File `json:"file" validate:"required"`
}

// UpdatePost carries the post's current image so it can be kept, or deleted
// once File replaces it.
type UpdatePost struct {
	PostID   string      `json:"postId" validate:"required"`
	ImageID  string      `json:"imageId" validate:"required"`
	ImageURL string      `json:"imageUrl" validate:"required"`
	Caption  string      `json:"caption" validate:"max=2200"`
	Location string      `json:"location" validate:"max=1000"`
	Tags     string      `json:"tags" validate:"max=1000"`
	File     *types.File `json:"file"`
}

// UpdateUser mirrors UpdatePost for the avatar. ImageID is empty while the
// user still has the generated initials avatar.
type UpdateUser struct {
	UserID   string      `json:"userId" validate:"required"`
	Name     string      `json:"name" validate:"required,min=2"`
	Bio      string      `json:"bio" validate:"max=2200"`
	ImageID  string      `json:"imageId"`
	ImageURL string      `json:"imageUrl" validate:"required"`
	File     *types.File `json:"file"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Service) validateInput(op string, in interface{}) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Op: op, Kind: types.ErrInvalidInput, Err: err}
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &ValidationError{Field: fe.Field(), Message: validationMessage(fe)})
	}

	return &Error{Op: op, Kind: types.ErrInvalidInput, Err: errors.Join(errs...)}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
