package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"shop_backend/internal/config"
	"shop_backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUser struct {
	ID           string         `bson:"_id"`
	Name         string         `bson:"name"`
	Email        string         `bson:"email"`
	PasswordHash string         `bson:"password"`
	Role         string         `bson:"role"`
	CartData     map[string]int `bson:"cartData"`
	CreatedAt    time.Time      `bson:"date"`
}

func newMongoUser(u *model.User) mongoUser {
	cart := make(map[string]int, len(u.CartData))
	for slot, qty := range u.CartData {
		cart[strconv.Itoa(slot)] = qty
	}
	return mongoUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CartData:     cart,
		CreatedAt:    u.CreatedAt,
	}
}

func (d mongoUser) model() *model.User {
	return &model.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CartData:     cartFromDocument(d.CartData),
		CreatedAt:    d.CreatedAt,
	}
}

func cartFromDocument(doc map[string]int) model.Cart {
	cart := make(model.Cart, len(doc))
	for key, qty := range doc {
		slot, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		cart[slot] = qty
	}
	return cart
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a UserRepository over the users collection
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(config.UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	if _, err := r.coll.InsertOne(ctx, newMongoUser(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	var doc mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.model(), nil
}

// AdjustCart uses $inc. Decrements only match when the slot holds enough to stay non-negative.
func (r *mongoUserRepository) AdjustCart(ctx context.Context, userID string, slot, delta int) (model.Cart, error) {
	field := "cartData." + strconv.Itoa(slot)
	filter := bson.D{{Key: "_id", Value: userID}}
	if delta < 0 {
		filter = append(filter, bson.E{Key: field, Value: bson.D{{Key: "$gte", Value: -delta}}})
	}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: field, Value: delta}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoUser
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return cartFromDocument(doc.CartData), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	// Either the user is gone or the slot is already empty
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user.CartData, nil
}
