package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
)

type lineItemDoc struct {
	ProductID string               `bson:"product_id"`
	Name      string               `bson:"name"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
	Quantity  int                  `bson:"quantity"`
	ImageRef  string               `bson:"image_ref,omitempty"`
}

type orderDoc struct {
	ID           string               `bson:"_id"`
	CustomerName string               `bson:"customer_name"`
	Phone        string               `bson:"phone"`
	Address      string               `bson:"address"`
	ShippingZone string               `bson:"shipping_zone"`
	ShippingFee  primitive.Decimal128 `bson:"shipping_fee"`
	TotalPrice   primitive.Decimal128 `bson:"total_price"`
	LineItems    []lineItemDoc        `bson:"line_items"`
	Status       string               `bson:"status"`
	CreatedAt    time.Time            `bson:"created_at"`
}

func newOrderDoc(o *order.Order) (*orderDoc, error) {
	fee, err := toDecimal128(o.ShippingFee)
	if err != nil {
		return nil, err
	}
	total, err := toDecimal128(o.TotalPrice)
	if err != nil {
		return nil, err
	}
	items := make([]lineItemDoc, len(o.LineItems))
	for i, it := range o.LineItems {
		price, err := toDecimal128(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		items[i] = lineItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: price,
			Quantity:  it.Quantity,
			ImageRef:  it.ImageRef,
		}
	}
	return &orderDoc{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Address:      o.Address,
		ShippingZone: string(o.ShippingZone),
		ShippingFee:  fee,
		TotalPrice:   total,
		LineItems:    items,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
	}, nil
}

func (d *orderDoc) order() (*order.Order, error) {
	fee, err := fromDecimal128(d.ShippingFee)
	if err != nil {
		return nil, err
	}
	total, err := fromDecimal128(d.TotalPrice)
	if err != nil {
		return nil, err
	}
	items := make([]order.LineItem, len(d.LineItems))
	for i, it := range d.LineItems {
		price, err := fromDecimal128(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		items[i] = order.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: price,
			Quantity:  it.Quantity,
			ImageRef:  it.ImageRef,
		}
	}
	return &order.Order{
		ID:           d.ID,
		CustomerName: d.CustomerName,
		Phone:        d.Phone,
		Address:      d.Address,
		ShippingZone: order.ShippingZone(d.ShippingZone),
		ShippingFee:  fee,
		TotalPrice:   total,
		LineItems:    items,
		Status:       order.Status(d.Status),
		CreatedAt:    d.CreatedAt.UTC(),
	}, nil
}

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository on a MongoDB collection. Each
// order is one document, so every write is atomic.
type OrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository returns a repository over db's orders collection.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{collection: db.Collection(ordersCollection)}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	doc, err := newOrderDoc(o)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

func (r *OrderRepository) ListByPhone(ctx context.Context, phone string) ([]order.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.collection.Find(ctx, bson.M{"phone": phone}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding orders: %w", err)
	}

	out := make([]order.Order, 0, len(docs))
	for i := range docs {
		o, err := docs[i].order()
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var d orderDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return d.order()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to order.Status) (*order.Order, error) {
	filter := bson.M{"_id": id, "status": string(from)}
	update := bson.M{"$set": bson.M{"status": string(to)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d orderDoc
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d)
	if err == nil {
		return d.order()
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("updating order %q: %w", id, err)
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("checking order %q: %w", id, err)
	}
	if n == 0 {
		return nil, order.ErrNotFound
	}
	return nil, order.ErrStatusConflict
}
