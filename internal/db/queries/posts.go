package queries

import (
	"context"
	sqlPackage "database/sql"
	"errors"
	"fmt"
	"time"

	"connectsphere/internal/db"
	"connectsphere/internal/models"

	"github.com/Masterminds/squirrel"
)

var postColumns = []string{
	"id", "user_id", "content", "file_name", "file_url", "likes_count", "created_at", "updated_at",
}

type postRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Content    string    `db:"content"`
	FileName   string    `db:"file_name"`
	FileURL    string    `db:"file_url"`
	LikesCount int       `db:"likes_count"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *postRow) toModel() *models.Post {
	return &models.Post{
		ID:         r.ID,
		UserID:     r.UserID,
		Content:    r.Content,
		File:       models.MediaFile{Name: r.FileName, URL: r.FileURL},
		LikesCount: r.LikesCount,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// PostQueries содержит запросы к таблицам постов и лайков
type PostQueries struct {
	db  *db.Database
	sq  squirrel.StatementBuilderType
	now func() time.Time
}

// NewPostQueries создает новый экземпляр PostQueries
func NewPostQueries(db *db.Database) *PostQueries {
	return &PostQueries{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(db),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CreatePost создает пост
func (q *PostQueries) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	created := *post
	if created.ID == "" {
		created.ID = NewID()
	}
	created.LikesCount = 0
	now := q.now()
	created.CreatedAt, created.UpdatedAt = now, now

	query := q.sq.
		Insert("posts").
		Columns(postColumns...).
		Values(created.ID, created.UserID, created.Content, created.File.Name, created.File.URL,
			created.LikesCount, created.CreatedAt, created.UpdatedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := q.db.ExecContext(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return &created, nil
}

// GetPostByID ищет пост по идентификатору
func (q *PostQueries) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	query := q.sq.
		Select(postColumns...).
		From("posts").
		Where(squirrel.Eq{"id": id}).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var row postRow
	if err := q.db.GetContext(ctx, &row, sql, args...); err != nil {
		if errors.Is(err, sqlPackage.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return row.toModel(), nil
}

func applyPostFilter(query squirrel.SelectBuilder, filter models.PostFilter) squirrel.SelectBuilder {
	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	return query
}

// ListPosts возвращает страницу постов, новые первыми
func (q *PostQueries) ListPosts(ctx context.Context, filter models.PostFilter, page models.Page) ([]models.Post, error) {
	query := applyPostFilter(q.sq.Select(postColumns...).From("posts"), filter).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset()))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []postRow
	if err := q.db.SelectContext(ctx, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]models.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, *rows[i].toModel())
	}

	return posts, nil
}

// CountPosts считает посты по фильтру
func (q *PostQueries) CountPosts(ctx context.Context, filter models.PostFilter) (int64, error) {
	query := applyPostFilter(q.sq.Select("COUNT(*)").From("posts"), filter)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int64
	if err := q.db.QueryRowContext(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}

// UpdatePost меняет переданные поля поста
func (q *PostQueries) UpdatePost(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	set := map[string]interface{}{"updated_at": q.now()}
	if upd.Content != nil {
		set["content"] = *upd.Content
	}
	if upd.File != nil {
		set["file_name"] = upd.File.Name
		set["file_url"] = upd.File.URL
	}

	query := q.sq.
		Update("posts").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(postColumns))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var row postRow
	if err := q.db.GetContext(ctx, &row, sql, args...); err != nil {
		if errors.Is(err, sqlPackage.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return row.toModel(), nil
}

// DeletePost удаляет пост; лайки и комментарии удаляются каскадом
func (q *PostQueries) DeletePost(ctx context.Context, id string) error {
	query := q.sq.
		Delete("posts").
		Where(squirrel.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	res, err := q.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ToggleLike ставит лайк, если его нет, иначе снимает. Строка поста
// блокируется на время транзакции, поэтому одновременные переключения не теряются
func (q *PostQueries) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	tx, err := q.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockSQL, lockArgs, err := q.sq.
		Select("id").
		From("posts").
		Where(squirrel.Eq{"id": postID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return false, 0, fmt.Errorf("failed to build query: %w", err)
	}

	var lockedID string
	if err := tx.QueryRowContext(ctx, lockSQL, lockArgs...).Scan(&lockedID); err != nil {
		if errors.Is(err, sqlPackage.ErrNoRows) {
			return false, 0, models.ErrNotFound
		}
		return false, 0, fmt.Errorf("failed to lock post: %w", err)
	}

	insertSQL, insertArgs, err := q.sq.
		Insert("post_likes").
		Columns("post_id", "user_id", "created_at").
		Values(postID, userID, q.now()).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, 0, fmt.Errorf("failed to build query: %w", err)
	}

	res, err := tx.ExecContext(ctx, insertSQL, insertArgs...)
	if err != nil {
		return false, 0, fmt.Errorf("failed to insert like: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	liked := inserted == 1
	delta := "likes_count + 1"
	if !liked {
		deleteSQL, deleteArgs, err := q.sq.
			Delete("post_likes").
			Where(squirrel.Eq{"post_id": postID, "user_id": userID}).
			ToSql()
		if err != nil {
			return false, 0, fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteSQL, deleteArgs...); err != nil {
			return false, 0, fmt.Errorf("failed to delete like: %w", err)
		}
		delta = "GREATEST(likes_count - 1, 0)"
	}

	countSQL, countArgs, err := q.sq.
		Update("posts").
		Set("likes_count", squirrel.Expr(delta)).
		Where(squirrel.Eq{"id": postID}).
		Suffix("RETURNING likes_count").
		ToSql()
	if err != nil {
		return false, 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, countSQL, countArgs...).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("failed to update likes count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return liked, count, nil
}
