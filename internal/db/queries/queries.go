package queries

import (
	"context"
	"errors"
	"strings"

	"connectsphere/internal/models"

	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserQueriesInterface определяет методы хранилища пользователей
type UserQueriesInterface interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) (*models.User, error)
	ListUsers(ctx context.Context, page models.Page) ([]models.User, error)
	CountUsers(ctx context.Context, filter models.UserFilter) (int64, error)
}

// PostQueriesInterface определяет методы хранилища постов
type PostQueriesInterface interface {
	CreatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, filter models.PostFilter, page models.Page) ([]models.Post, error)
	CountPosts(ctx context.Context, filter models.PostFilter) (int64, error)
	UpdatePost(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	// ToggleLike атомарно ставит или снимает лайк и возвращает новое состояние
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, likesCount int, err error)
}

// CommentQueriesInterface определяет методы хранилища комментариев
type CommentQueriesInterface interface {
	CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, postID string, page models.Page) ([]models.Comment, error)
	// CountComments считает комментарии поста; пустой postID - все комментарии
	CountComments(ctx context.Context, postID string) (int64, error)
	CountCommentsByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)
	DeleteComment(ctx context.Context, id string) error
	DeleteCommentsByPost(ctx context.Context, postID string) (int64, error)
}

// Store объединяет хранилища одного бэкенда
type Store struct {
	Users    UserQueriesInterface
	Posts    PostQueriesInterface
	Comments CommentQueriesInterface
	Close    func(ctx context.Context) error
}

// NewID генерирует идентификатор в формате ObjectID для любого бэкенда
func NewID() string {
	return primitive.NewObjectID().Hex()
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
