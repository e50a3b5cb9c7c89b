package types

type NotificationMessage struct {
	Kind     string `json:"kind"`
	PostId   string `json:"postId"`
	ImageUrl string `json:"imageUrl"`
	UserId   string `json:"userId"`
	UserName string `json:"userName"`
}
