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

	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
)

type productDoc struct {
	ID           string               `bson:"_id"`
	Name         string               `bson:"name"`
	RegularPrice primitive.Decimal128 `bson:"regular_price"`
	OfferPrice   primitive.Decimal128 `bson:"offer_price"`
	Details      string               `bson:"details"`
	ImageURL     string               `bson:"image_url"`
	ImageID      string               `bson:"image_id,omitempty"`
	CreatedAt    time.Time            `bson:"created_at"`
}

func (d productDoc) product() (product.Product, error) {
	regular, err := fromDecimal128(d.RegularPrice)
	if err != nil {
		return product.Product{}, err
	}
	offer, err := fromDecimal128(d.OfferPrice)
	if err != nil {
		return product.Product{}, err
	}
	return product.Product{
		ID:           d.ID,
		Name:         d.Name,
		RegularPrice: regular,
		OfferPrice:   offer,
		Details:      d.Details,
		ImageURL:     d.ImageURL,
		ImageID:      d.ImageID,
		CreatedAt:    d.CreatedAt.UTC(),
	}, nil
}

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository on a MongoDB collection.
type ProductRepository struct {
	collection *mongo.Collection
}

// NewProductRepository returns a repository over db's products collection.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{collection: db.Collection(productsCollection)}
}

func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding products: %w", err)
	}

	out := make([]product.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.product()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	var d productDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	p, err := d.product()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	regular, err := toDecimal128(p.RegularPrice)
	if err != nil {
		return err
	}
	offer, err := toDecimal128(p.OfferPrice)
	if err != nil {
		return err
	}
	_, err = r.collection.InsertOne(ctx, productDoc{
		ID:           p.ID,
		Name:         p.Name,
		RegularPrice: regular,
		OfferPrice:   offer,
		Details:      p.Details,
		ImageURL:     p.ImageURL,
		ImageID:      p.ImageID,
		CreatedAt:    p.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return product.ErrNotFound
	}
	return nil
}
