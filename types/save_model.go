package types

import "time"

// Save is a user's bookmark of a post.
type Save struct {
	Id        string    `json:"id"`
	User      string    `json:"user"`
	Post      string    `json:"post"`
	CreatedAt time.Time `json:"createdAt"`
}
