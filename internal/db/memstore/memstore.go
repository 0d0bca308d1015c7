// Package memstore реализует хранилища в памяти процесса для локального запуска и тестов
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"connectsphere/internal/db/queries"
	"connectsphere/internal/models"
)

type likeKey struct {
	postID string
	userID string
}

// DB - общее состояние трех хранилищ под одной блокировкой
type DB struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	emails   map[string]string
	posts    map[string]*models.Post
	likes    map[likeKey]struct{}
	comments map[string]*models.Comment
	now      func() time.Time
}

// NewDB создает пустое хранилище
func NewDB() *DB {
	return &DB{
		users:    make(map[string]*models.User),
		emails:   make(map[string]string),
		posts:    make(map[string]*models.Post),
		likes:    make(map[likeKey]struct{}),
		comments: make(map[string]*models.Comment),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// New собирает Store поверх нового хранилища в памяти
func New() *queries.Store {
	return newStore(NewDB())
}

func newStore(db *DB) *queries.Store {
	return &queries.Store{
		Users:    &UserStore{db: db},
		Posts:    &PostStore{db: db},
		Comments: &CommentStore{db: db},
		Close:    func(context.Context) error { return nil },
	}
}

// newestFirst сортирует по убыванию даты создания, затем идентификатора
func newestFirst(created func(i int) time.Time, id func(i int) string) func(i, j int) bool {
	return func(i, j int) bool {
		ci, cj := created(i), created(j)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(i) > id(j)
	}
}

func paginate(total int, page models.Page) (int, int) {
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return start, end
}

// UserStore - пользователи в памяти
type UserStore struct {
	db *DB
}

// CreateUser добавляет пользователя; email уникален без учета регистра
func (s *UserStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := s.db.emails[key]; ok {
		return nil, models.ErrDuplicate
	}

	created := *user
	if created.ID == "" {
		created.ID = queries.NewID()
	}
	if created.Role == "" {
		created.Role = models.RoleUser
	}
	if created.ProfilePic.FileName == "" {
		created.ProfilePic = models.DefaultProfilePic()
	}
	created.CreatedAt = s.db.now()
	created.UpdatedAt = created.CreatedAt

	s.db.users[created.ID] = &created
	s.db.emails[key] = created.ID

	out := created
	return &out, nil
}

// GetUserByEmail ищет пользователя по email
func (s *UserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	id, ok := s.db.emails[strings.ToLower(email)]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *s.db.users[id]
	return &out, nil
}

// GetUserByID ищет пользователя по идентификатору
func (s *UserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *u
	return &out, nil
}

// UpdateProfile меняет переданные поля профиля
func (s *UserStore) UpdateProfile(_ context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.ProfilePic != nil {
		u.ProfilePic = *upd.ProfilePic
	}
	u.UpdatedAt = s.db.now()

	out := *u
	return &out, nil
}

// SetBlocked блокирует или разблокирует пользователя
func (s *UserStore) SetBlocked(_ context.Context, id string, blocked bool) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.IsBlocked = blocked
	u.UpdatedAt = s.db.now()

	out := *u
	return &out, nil
}

// ListUsers возвращает страницу пользователей, новые первыми
func (s *UserStore) ListUsers(_ context.Context, page models.Page) ([]models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	all := make([]models.User, 0, len(s.db.users))
	for _, u := range s.db.users {
		all = append(all, *u)
	}
	sort.Slice(all, newestFirst(
		func(i int) time.Time { return all[i].CreatedAt },
		func(i int) string { return all[i].ID }))

	start, end := paginate(len(all), page)
	return all[start:end], nil
}

// CountUsers считает пользователей по фильтру
func (s *UserStore) CountUsers(_ context.Context, filter models.UserFilter) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var n int64
	for _, u := range s.db.users {
		if filter.Blocked == nil || u.IsBlocked == *filter.Blocked {
			n++
		}
	}
	return n, nil
}

// PostStore - посты и лайки в памяти
type PostStore struct {
	db *DB
}

// CreatePost создает пост
func (s *PostStore) CreatePost(_ context.Context, post *models.Post) (*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	created := *post
	if created.ID == "" {
		created.ID = queries.NewID()
	}
	created.LikesCount = 0
	created.CreatedAt = s.db.now()
	created.UpdatedAt = created.CreatedAt
	s.db.posts[created.ID] = &created

	out := created
	return &out, nil
}

// GetPostByID ищет пост по идентификатору
func (s *PostStore) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	p, ok := s.db.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (s *PostStore) filtered(filter models.PostFilter) []models.Post {
	posts := make([]models.Post, 0, len(s.db.posts))
	for _, p := range s.db.posts {
		if filter.UserID == "" || p.UserID == filter.UserID {
			posts = append(posts, *p)
		}
	}
	return posts
}

// ListPosts возвращает страницу постов, новые первыми
func (s *PostStore) ListPosts(_ context.Context, filter models.PostFilter, page models.Page) ([]models.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	posts := s.filtered(filter)
	sort.Slice(posts, newestFirst(
		func(i int) time.Time { return posts[i].CreatedAt },
		func(i int) string { return posts[i].ID }))

	start, end := paginate(len(posts), page)
	return posts[start:end], nil
}

// CountPosts считает посты по фильтру
func (s *PostStore) CountPosts(_ context.Context, filter models.PostFilter) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return int64(len(s.filtered(filter))), nil
}

// UpdatePost меняет переданные поля поста
func (s *PostStore) UpdatePost(_ context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.File != nil {
		p.File = *upd.File
	}
	p.UpdatedAt = s.db.now()

	out := *p
	return &out, nil
}

// DeletePost удаляет пост вместе с его лайками
func (s *PostStore) DeletePost(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.posts[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.db.posts, id)
	for k := range s.db.likes {
		if k.postID == id {
			delete(s.db.likes, k)
		}
	}
	return nil
}

// ToggleLike ставит лайк, если его нет, иначе снимает
func (s *PostStore) ToggleLike(_ context.Context, postID, userID string) (bool, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.posts[postID]
	if !ok {
		return false, 0, models.ErrNotFound
	}

	key := likeKey{postID: postID, userID: userID}
	if _, liked := s.db.likes[key]; liked {
		delete(s.db.likes, key)
		if p.LikesCount > 0 {
			p.LikesCount--
		}
		return false, p.LikesCount, nil
	}

	s.db.likes[key] = struct{}{}
	p.LikesCount++
	return true, p.LikesCount, nil
}

// CommentStore - комментарии в памяти
type CommentStore struct {
	db *DB
}

// CreateComment добавляет комментарий
func (s *CommentStore) CreateComment(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	created := *comment
	if created.ID == "" {
		created.ID = queries.NewID()
	}
	created.CreatedAt = s.db.now()
	created.UpdatedAt = created.CreatedAt
	s.db.comments[created.ID] = &created

	out := created
	return &out, nil
}

// GetCommentByID ищет комментарий по идентификатору
func (s *CommentStore) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	c, ok := s.db.comments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *c
	return &out, nil
}

// ListComments возвращает страницу комментариев поста, новые первыми
func (s *CommentStore) ListComments(_ context.Context, postID string, page models.Page) ([]models.Comment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	comments := make([]models.Comment, 0)
	for _, c := range s.db.comments {
		if c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	sort.Slice(comments, newestFirst(
		func(i int) time.Time { return comments[i].CreatedAt },
		func(i int) string { return comments[i].ID }))

	start, end := paginate(len(comments), page)
	return comments[start:end], nil
}

// CountComments считает комментарии поста; пустой postID - все комментарии
func (s *CommentStore) CountComments(_ context.Context, postID string) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var n int64
	for _, c := range s.db.comments {
		if postID == "" || c.PostID == postID {
			n++
		}
	}
	return n, nil
}

// CountCommentsByPosts считает комментарии для нескольких постов
func (s *CommentStore) CountCommentsByPosts(_ context.Context, postIDs []string) (map[string]int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	counts := make(map[string]int64, len(postIDs))
	wanted := make(map[string]struct{}, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = struct{}{}
	}
	for _, c := range s.db.comments {
		if _, ok := wanted[c.PostID]; ok {
			counts[c.PostID]++
		}
	}
	return counts, nil
}

// DeleteComment удаляет комментарий
func (s *CommentStore) DeleteComment(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.comments[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.db.comments, id)
	return nil
}

// DeleteCommentsByPost удаляет все комментарии поста
func (s *CommentStore) DeleteCommentsByPost(_ context.Context, postID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var n int64
	for id, c := range s.db.comments {
		if c.PostID == postID {
			delete(s.db.comments, id)
			n++
		}
	}
	return n, nil
}
