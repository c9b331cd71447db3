// Package mongo stores each user's active refresh tokens as an
// embedded array on the user document, mutated with atomic $push,
// $pull and $set updates so concurrent logins on the same account
// cannot lose entries.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artfolio/auth-service/internal/auth/domain"
	autherror "github.com/artfolio/auth-service/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const colUsers = "users"

type userDoc struct {
	ID            string            `bson:"_id"`
	Email         string            `bson:"email"`
	PasswordHash  string            `bson:"password_hash"`
	Name          string            `bson:"name"`
	IsActive      bool              `bson:"is_active"`
	IsAdmin       bool              `bson:"is_admin"`
	CreatedAt     time.Time         `bson:"created_at"`
	UpdatedAt     time.Time         `bson:"updated_at"`
	RefreshTokens []refreshTokenDoc `bson:"refresh_tokens"`
}

type refreshTokenDoc struct {
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

type MongoRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewMongoRepository(db *mongo.Database, timeout time.Duration) (*MongoRepository, error) {
	col := db.Collection(colUsers)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure email index: %w", err)
	}

	return &MongoRepository{col: col, timeout: timeout}, nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := userDoc{
		ID:            user.ID,
		Email:         user.Email,
		PasswordHash:  user.PasswordHash,
		Name:          user.Name,
		IsActive:      user.IsActive,
		IsAdmin:       user.IsAdmin,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
		RefreshTokens: []refreshTokenDoc{},
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return autherror.ErrEmailAlreadyInUse
		}
		return storeErr("create user", err)
	}

	return nil
}

func (r *MongoRepository) SetActive(ctx context.Context, userID string, active bool) error {
	return r.updateOne(ctx, userID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "is_active", Value: active},
		{Key: "updated_at", Value: time.Now()},
	}}})
}

func (r *MongoRepository) AddRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	return r.updateOne(ctx, userID, bson.D{{Key: "$push", Value: bson.D{
		{Key: "refresh_tokens", Value: refreshTokenDoc{
			Token:     token,
			ExpiresAt: expiresAt,
			CreatedAt: time.Now(),
		}},
	}}})
}

func (r *MongoRepository) RemoveRefreshToken(ctx context.Context, userID, token string) error {
	return r.updateOne(ctx, userID, bson.D{{Key: "$pull", Value: bson.D{
		{Key: "refresh_tokens", Value: bson.D{{Key: "token", Value: token}}},
	}}})
}

func (r *MongoRepository) ClearRefreshTokens(ctx context.Context, userID string) error {
	return r.updateOne(ctx, userID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "refresh_tokens", Value: []refreshTokenDoc{}},
	}}})
}

func (r *MongoRepository) HasRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.D{
		{Key: "_id", Value: userID},
		{Key: "refresh_tokens", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
			{Key: "token", Value: token},
			{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: time.Now()}}},
		}}}},
	}

	count, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, storeErr("check refresh token", err)
	}

	return count > 0, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, storeErr("find user", err)
	}

	return &domain.User{
		ID:           doc.ID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Name:         doc.Name,
		IsActive:     doc.IsActive,
		IsAdmin:      doc.IsAdmin,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func (r *MongoRepository) updateOne(ctx context.Context, userID string, update bson.D) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID}}, update)
	if err != nil {
		return storeErr("update user", err)
	}

	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", autherror.ErrStoreUnavailable, op, err)
}
