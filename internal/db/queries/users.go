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

var userColumns = []string{
	"id", "name", "email", "password_hash", "role", "profile_pic_name",
	"profile_pic_url", "bio", "is_blocked", "created_at", "updated_at",
}

type userRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	PasswordHash   string    `db:"password_hash"`
	Role           string    `db:"role"`
	ProfilePicName string    `db:"profile_pic_name"`
	ProfilePicURL  string    `db:"profile_pic_url"`
	Bio            string    `db:"bio"`
	IsBlocked      bool      `db:"is_blocked"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r *userRow) toModel() (*models.User, error) {
	role, err := models.ParseRole(r.Role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", r.ID, err)
	}
	return &models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         role,
		ProfilePic:   models.ProfilePic{FileName: r.ProfilePicName, URL: r.ProfilePicURL},
		Bio:          r.Bio,
		IsBlocked:    r.IsBlocked,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

// UserQueries содержит запросы к таблице пользователей
type UserQueries struct {
	db *db.Database
	sq squirrel.StatementBuilderType
	// now подменяется в тестах
	now func() time.Time
}

// NewUserQueries создает новый экземпляр UserQueries
func NewUserQueries(db *db.Database) *UserQueries {
	return &UserQueries{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(db),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser создает нового пользователя; занятый email - models.ErrDuplicate
func (q *UserQueries) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	created := *user
	if created.ID == "" {
		created.ID = NewID()
	}
	if created.Role == "" {
		created.Role = models.RoleUser
	}
	if created.ProfilePic.FileName == "" {
		created.ProfilePic = models.DefaultProfilePic()
	}
	now := q.now()
	created.CreatedAt, created.UpdatedAt = now, now

	query := q.sq.
		Insert("users").
		Columns(userColumns...).
		Values(created.ID, created.Name, created.Email, created.PasswordHash, string(created.Role),
			created.ProfilePic.FileName, created.ProfilePic.URL, created.Bio, created.IsBlocked,
			created.CreatedAt, created.UpdatedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := q.db.ExecContext(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &created, nil
}

// GetUserByEmail ищет пользователя по email
func (q *UserQueries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return q.getOne(ctx, squirrel.Eq{"email": email})
}

// GetUserByID ищет пользователя по идентификатору
func (q *UserQueries) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return q.getOne(ctx, squirrel.Eq{"id": id})
}

func (q *UserQueries) getOne(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	query := q.sq.
		Select(userColumns...).
		From("users").
		Where(where).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var row userRow
	if err := q.db.GetContext(ctx, &row, sql, args...); err != nil {
		if errors.Is(err, sqlPackage.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return row.toModel()
}

// UpdateProfile меняет переданные поля профиля
func (q *UserQueries) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	set := map[string]interface{}{"updated_at": q.now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.ProfilePic != nil {
		set["profile_pic_name"] = upd.ProfilePic.FileName
		set["profile_pic_url"] = upd.ProfilePic.URL
	}
	return q.update(ctx, id, set)
}

// SetBlocked блокирует или разблокирует пользователя
func (q *UserQueries) SetBlocked(ctx context.Context, id string, blocked bool) (*models.User, error) {
	return q.update(ctx, id, map[string]interface{}{
		"is_blocked": blocked,
		"updated_at": q.now(),
	})
}

func (q *UserQueries) update(ctx context.Context, id string, set map[string]interface{}) (*models.User, error) {
	query := q.sq.
		Update("users").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(userColumns))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var row userRow
	if err := q.db.GetContext(ctx, &row, sql, args...); err != nil {
		if errors.Is(err, sqlPackage.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return row.toModel()
}

// ListUsers возвращает страницу пользователей, новые первыми
func (q *UserQueries) ListUsers(ctx context.Context, page models.Page) ([]models.User, error) {
	query := q.sq.
		Select(userColumns...).
		From("users").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset()))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []userRow
	if err := q.db.SelectContext(ctx, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]models.User, 0, len(rows))
	for i := range rows {
		u, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	return users, nil
}

// CountUsers считает пользователей по фильтру
func (q *UserQueries) CountUsers(ctx context.Context, filter models.UserFilter) (int64, error) {
	query := q.sq.Select("COUNT(*)").From("users")
	if filter.Blocked != nil {
		query = query.Where(squirrel.Eq{"is_blocked": *filter.Blocked})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int64
	if err := q.db.QueryRowContext(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}
