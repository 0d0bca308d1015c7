package mongostore

import (
	"time"

	"connectsphere/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type profilePicDoc struct {
	FileName string `bson:"file_name"`
	URL      string `bson:"url"`
}

type userDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email"`
	Password   string             `bson:"password"`
	Role       string             `bson:"role"`
	ProfilePic profilePicDoc      `bson:"profile_pic"`
	Bio        string             `bson:"bio"`
	IsBlocked  bool               `bson:"isBlocked"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d *userDoc) toModel() (*models.User, error) {
	role, err := models.ParseRole(d.Role)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         role,
		ProfilePic:   models.ProfilePic{FileName: d.ProfilePic.FileName, URL: d.ProfilePic.URL},
		Bio:          d.Bio,
		IsBlocked:    d.IsBlocked,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

type fileDoc struct {
	Name string `bson:"name"`
	URL  string `bson:"url"`
}

type postDoc struct {
	ID         primitive.ObjectID   `bson:"_id"`
	User       primitive.ObjectID   `bson:"user"`
	Content    string               `bson:"content"`
	File       fileDoc              `bson:"file"`
	Likes      []primitive.ObjectID `bson:"likes"`
	LikesCount int                  `bson:"likesCount"`
	CreatedAt  time.Time            `bson:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt"`
}

func (d *postDoc) toModel() *models.Post {
	return &models.Post{
		ID:         d.ID.Hex(),
		UserID:     d.User.Hex(),
		Content:    d.Content,
		File:       models.MediaFile{Name: d.File.Name, URL: d.File.URL},
		LikesCount: d.LikesCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Post      primitive.ObjectID `bson:"post"`
	User      primitive.ObjectID `bson:"user"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *commentDoc) toModel() *models.Comment {
	return &models.Comment{
		ID:        d.ID.Hex(),
		PostID:    d.Post.Hex(),
		UserID:    d.User.Hex(),
		Text:      d.Text,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
