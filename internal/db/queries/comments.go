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

var commentColumns = []string{"id", "post_id", "user_id", "text", "created_at", "updated_at"}

type commentRow struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	UserID    string    `db:"user_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *commentRow) toModel() *models.Comment {
	return &models.Comment{
		ID:        r.ID,
		PostID:    r.PostID,
		UserID:    r.UserID,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// CommentQueries содержит запросы к таблице комментариев
type CommentQueries struct {
	db  *db.Database
	sq  squirrel.StatementBuilderType
	now func() time.Time
}

// NewCommentQueries создает новый экземпляр CommentQueries
func NewCommentQueries(db *db.Database) *CommentQueries {
	return &CommentQueries{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(db),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CreateComment добавляет комментарий
func (q *CommentQueries) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	created := *comment
	if created.ID == "" {
		created.ID = NewID()
	}
	now := q.now()
	created.CreatedAt, created.UpdatedAt = now, now

	query := q.sq.
		Insert("comments").
		Columns(commentColumns...).
		Values(created.ID, created.PostID, created.UserID, created.Text, created.CreatedAt, created.UpdatedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := q.db.ExecContext(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return &created, nil
}

// GetCommentByID ищет комментарий по идентификатору
func (q *CommentQueries) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	query := q.sq.
		Select(commentColumns...).
		From("comments").
		Where(squirrel.Eq{"id": id}).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var row commentRow
	if err := q.db.GetContext(ctx, &row, sql, args...); err != nil {
		if errors.Is(err, sqlPackage.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return row.toModel(), nil
}

// ListComments возвращает страницу комментариев поста, новые первыми
func (q *CommentQueries) ListComments(ctx context.Context, postID string, page models.Page) ([]models.Comment, error) {
	query := q.sq.
		Select(commentColumns...).
		From("comments").
		Where(squirrel.Eq{"post_id": postID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset()))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []commentRow
	if err := q.db.SelectContext(ctx, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	comments := make([]models.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, *rows[i].toModel())
	}

	return comments, nil
}

// CountComments считает комментарии поста или все комментарии
func (q *CommentQueries) CountComments(ctx context.Context, postID string) (int64, error) {
	query := q.sq.Select("COUNT(*)").From("comments")
	if postID != "" {
		query = query.Where(squirrel.Eq{"post_id": postID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int64
	if err := q.db.QueryRowContext(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}

// CountCommentsByPosts считает комментарии для нескольких постов одним запросом
func (q *CommentQueries) CountCommentsByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	query := q.sq.
		Select("post_id", "COUNT(*) AS total").
		From("comments").
		Where(squirrel.Eq{"post_id": postIDs}).
		GroupBy("post_id")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID string
			total  int64
		)
		if err := rows.Scan(&postID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan comment count: %w", err)
		}
		counts[postID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment counts: %w", err)
	}

	return counts, nil
}

// DeleteComment удаляет комментарий
func (q *CommentQueries) DeleteComment(ctx context.Context, id string) error {
	sql, args, err := q.sq.Delete("comments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	res, err := q.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
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

// DeleteCommentsByPost удаляет все комментарии поста
func (q *CommentQueries) DeleteCommentsByPost(ctx context.Context, postID string) (int64, error) {
	sql, args, err := q.sq.Delete("comments").Where(squirrel.Eq{"post_id": postID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	res, err := q.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}

	return res.RowsAffected()
}
