package mongostore

import (
	"context"
	"errors"
	"fmt"

	"connectsphere/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore хранит пользователей в коллекции users
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore создает новый экземпляр UserStore
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(UsersCollection)}
}

// CreateUser добавляет пользователя; занятый email - models.ErrDuplicate
func (s *UserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Role:      string(user.Role),
		Bio:       user.Bio,
		IsBlocked: user.IsBlocked,
		ProfilePic: profilePicDoc{
			FileName: user.ProfilePic.FileName,
			URL:      user.ProfilePic.URL,
		},
	}
	if user.ID != "" {
		oid, err := primitive.ObjectIDFromHex(user.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", user.ID, err)
		}
		doc.ID = oid
	}
	if doc.Role == "" {
		doc.Role = string(models.RoleUser)
	}
	if doc.ProfilePic.FileName == "" {
		doc.ProfilePic = profilePicDoc{FileName: models.DefaultProfilePicName, URL: models.DefaultProfilePicURL}
	}
	doc.CreatedAt = now()
	doc.UpdatedAt = doc.CreatedAt

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return doc.toModel()
}

// GetUserByEmail ищет пользователя по email
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// GetUserByID ищет пользователя по идентификатору
func (s *UserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toModel()
}

// UpdateProfile меняет переданные поля профиля
func (s *UserStore) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.ProfilePic != nil {
		set["profile_pic"] = profilePicDoc{FileName: upd.ProfilePic.FileName, URL: upd.ProfilePic.URL}
	}
	return s.update(ctx, id, set)
}

// SetBlocked блокирует или разблокирует пользователя
func (s *UserStore) SetBlocked(ctx context.Context, id string, blocked bool) (*models.User, error) {
	return s.update(ctx, id, bson.M{"isBlocked": blocked, "updatedAt": now()})
}

func (s *UserStore) update(ctx context.Context, id string, set bson.M) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return doc.toModel()
}

// ListUsers возвращает страницу пользователей, новые первыми
func (s *UserStore) ListUsers(ctx context.Context, page models.Page) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, pageOptions(page))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for i := range docs {
		u, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

// CountUsers считает пользователей по фильтру
func (s *UserStore) CountUsers(ctx context.Context, filter models.UserFilter) (int64, error) {
	query := bson.M{}
	if filter.Blocked != nil {
		query["isBlocked"] = *filter.Blocked
	}
	count, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
