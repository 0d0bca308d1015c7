package models

import "time"

// Comment представляет комментарий к посту
type Comment struct {
	ID        string
	PostID    string
	UserID    string
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentRequest представляет запрос на добавление комментария
type CommentRequest struct {
	Text string `json:"text"`
}

// CommentResponse представляет комментарий в ответах API
type CommentResponse struct {
	ID        string      `json:"id"`
	PostID    string      `json:"postId"`
	Text      string      `json:"text"`
	Author    *PostAuthor `json:"user,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewCommentResponse собирает представление комментария
func NewCommentResponse(c *Comment, author *User) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
	if author != nil {
		resp.Author = &PostAuthor{
			ID:         author.ID,
			Name:       author.Name,
			ProfilePic: author.ProfilePic,
		}
	}
	return resp
}

// CommentEnvelope оборачивает один комментарий
type CommentEnvelope struct {
	Comment CommentResponse `json:"comment"`
}

// CommentListResponse представляет страницу комментариев
type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
}
