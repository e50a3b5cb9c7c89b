package types

import "time"

type Post struct {
	Id        string    `json:"id"`
	Creator   string    `json:"creator"`
	Caption   string    `json:"caption"`
	Location  string    `json:"location"`
	Tags      []string  `json:"tags"`
	ImageUrl  string    `json:"imageUrl"`
	ImageId   string    `json:"imageId"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostsPage is one page of the infinite feed. NextCursor is empty on the last page.
type PostsPage struct {
	Posts      []Post `json:"posts"`
	NextCursor string `json:"nextCursor,omitempty"`
}
