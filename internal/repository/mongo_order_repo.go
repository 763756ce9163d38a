package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop_backend/internal/config"
	"shop_backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrder struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	OrderID       string               `bson:"orderId"`
	UserID        string               `bson:"userId"`
	Items         []bson.M             `bson:"items"`
	TotalAmount   primitive.Decimal128 `bson:"totalAmount"`
	PaymentMethod string               `bson:"paymentMethod"`
	Status        string               `bson:"status"`
	CreatedAt     time.Time            `bson:"date"`
}

type mongoOrderWithOwner struct {
	Order mongoOrder `bson:",inline"`
	Owner []struct {
		Name  string `bson:"name"`
		Email string `bson:"email"`
	} `bson:"owner"`
}

func (d mongoOrder) model() (*model.Order, error) {
	total, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return nil, err
	}
	items := make([]model.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, model.OrderItem(item))
	}
	return &model.Order{
		StorageID:     d.ID.Hex(),
		OrderID:       d.OrderID,
		UserID:        d.UserID,
		Items:         items,
		TotalAmount:   total,
		PaymentMethod: d.PaymentMethod,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
	}, nil
}

type mongoOrderRepository struct {
	coll *mongo.Collection
}

// NewMongoOrderRepository creates an OrderRepository over the orders collection
func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{coll: db.Collection(config.OrdersCollection)}
}

func (r *mongoOrderRepository) Create(ctx context.Context, o *model.Order) error {
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return err
	}
	items := make([]bson.M, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, bson.M(item))
	}

	doc := mongoOrder{
		ID:            primitive.NewObjectID(),
		OrderID:       o.OrderID,
		UserID:        o.UserID,
		Items:         items,
		TotalAmount:   total,
		PaymentMethod: o.PaymentMethod,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	o.StorageID = doc.ID.Hex()
	return nil
}

func (r *mongoOrderRepository) FindByUser(ctx context.Context, userID string) ([]model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "userId", Value: userID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by user: %w", err)
	}
	var docs []mongoOrder
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]model.Order, 0, len(docs))
	for _, doc := range docs {
		o, err := doc.model()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (r *mongoOrderRepository) FindAllWithUsers(ctx context.Context) ([]model.AdminOrder, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: config.UsersCollection},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to query all orders: %w", err)
	}
	var docs []mongoOrderWithOwner
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]model.AdminOrder, 0, len(docs))
	for _, doc := range docs {
		o, err := doc.Order.model()
		if err != nil {
			return nil, err
		}
		admin := model.AdminOrder{Order: *o}
		if len(doc.Owner) > 0 {
			admin.Owner = &model.OrderOwner{Name: doc.Owner[0].Name, Email: doc.Owner[0].Email}
		}
		orders = append(orders, admin)
	}
	return orders, nil
}

func (r *mongoOrderRepository) UpdateStatus(ctx context.Context, orderID, status string) (*model.Order, error) {
	filter := bson.D{{Key: "orderId", Value: orderID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoOrder
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return doc.model()
}
