package models

import "time"

// MediaFile - медиафайл поста: ключ в хранилище и публичная ссылка
type MediaFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Post представляет пост пользователя
type Post struct {
	ID         string
	UserID     string
	Content    string
	File       MediaFile
	LikesCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PostFilter ограничивает выборку постов; пустой UserID означает все посты
type PostFilter struct {
	UserID string
}

// PostUpdate - изменяемые поля поста; nil означает "не менять"
type PostUpdate struct {
	Content *string
	File    *MediaFile
}

// PostAuthor - краткие данные автора в ответе
type PostAuthor struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	ProfilePic ProfilePic `json:"profile_pic"`
}

// PostResponse представляет пост в ответах API
type PostResponse struct {
	ID            string      `json:"id"`
	Content       string      `json:"content"`
	File          MediaFile   `json:"file"`
	LikesCount    int         `json:"likesCount"`
	CommentsCount int64       `json:"commentsCount"`
	Author        *PostAuthor `json:"user,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// NewPostResponse собирает представление поста
func NewPostResponse(p *Post, comments int64, author *User) PostResponse {
	resp := PostResponse{
		ID:            p.ID,
		Content:       p.Content,
		File:          p.File,
		LikesCount:    p.LikesCount,
		CommentsCount: comments,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
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

// WithAuthorEmail добавляет email автора (для администратора)
func (r PostResponse) WithAuthorEmail(email string) PostResponse {
	if r.Author != nil {
		author := *r.Author
		author.Email = email
		r.Author = &author
	}
	return r
}

// PostEnvelope оборачивает один пост
type PostEnvelope struct {
	Post PostResponse `json:"post"`
}

// PostListResponse представляет страницу постов
type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
}

// LikeState - состояние лайка после переключения
type LikeState struct {
	ID         string `json:"id"`
	LikesCount int    `json:"likesCount"`
	IsLiked    bool   `json:"isLiked"`
}

// LikeResponse представляет ответ на переключение лайка
type LikeResponse struct {
	Post LikeState `json:"post"`
}
