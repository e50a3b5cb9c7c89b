package types

import "time"

type User struct {
	Id        string    `json:"id"`
	AccountId string    `json:"accountId"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ImageUrl  string    `json:"imageUrl"`
	ImageId   string    `json:"imageId,omitempty"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Account is the auth-side record behind a User profile.
type Account struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
