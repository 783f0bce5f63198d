// Command seed-db loads a product catalog file into the configured store,
// uploading each product image through the media store.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appkg "github.com/IhossainpHero/Arboom-bd/internal/app"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/media"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
)

const bloomFPR = 0.001

// seedProduct is one entry of the catalog file. Image is a path relative to
// the images directory.
type seedProduct struct {
	Name         string
	Details      string
	RegularPrice decimal.Decimal
	OfferPrice   decimal.Decimal
	Image        string
}

func main() {
	var (
		productsFile string
		imagesDir    string
		concurrency  int
		dryRun       bool
	)
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "catalog JSON file, optionally gzip-compressed (.gz)")
	flag.StringVar(&imagesDir, "images-dir", "db/seed/images", "directory holding the product images")
	flag.IntVar(&concurrency, "concurrency", 4, "parallel image uploads")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and deduplicate without writing")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, productsFile, imagesDir, concurrency, dryRun); err != nil {
		lg.Error("Seed failed", zap.Error(err))
		os.Exit(1)
	}
	lg.Info("Seed completed")
}

func run(ctx context.Context, lg *zap.Logger, productsFile, imagesDir string, concurrency int, dryRun bool) error {
	items, err := readCatalogFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read catalog")
	}
	lg.Info("Catalog file read", zap.String("path", productsFile), zap.Int("products", len(items)))

	cfg, err := appkg.LoadEnvConfig()
	if err != nil {
		return err
	}
	store, err := appkg.OpenStorage(ctx, cfg.Storage, lg)
	if err != nil {
		return err
	}
	defer store.Close()

	existing, err := store.Products.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list existing products")
	}
	fresh := dedupe(existing, items, lg)
	lg.Info("Products to create", zap.Int("count", len(fresh)), zap.Int("skipped", len(items)-len(fresh)))
	if dryRun || len(fresh) == 0 {
		return nil
	}

	images, closeImages, err := appkg.OpenMedia(ctx, cfg.Media, lg)
	if err != nil {
		return errors.Wrap(err, "open media store")
	}
	defer func() { _ = closeImages() }()

	catalog := product.NewCatalog(store.Products, images, media.DefaultOptions(cfg.Media.Folder), lg)
	created, err := createAll(ctx, lg, catalog, imagesDir, fresh, concurrency)
	lg.Info("Products created", zap.Int64("count", created))
	return err
}

type creator interface {
	Create(ctx context.Context, in product.Input) (*product.Product, error)
}

// createAll uploads and records products with at most concurrency requests
// in flight. The first failure cancels the remaining work.
func createAll(ctx context.Context, lg *zap.Logger, catalog creator, imagesDir string, items []seedProduct, concurrency int) (int64, error) {
	var created atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for _, it := range items {
		g.Go(func() error {
			img, err := os.ReadFile(filepath.Join(imagesDir, it.Image))
			if err != nil {
				return errors.Wrapf(err, "read image for %q", it.Name)
			}
			p, err := catalog.Create(ctx, product.Input{
				Name:         it.Name,
				Details:      it.Details,
				RegularPrice: it.RegularPrice,
				OfferPrice:   it.OfferPrice,
				Image:        img,
				ImageName:    filepath.Base(it.Image),
			})
			if err != nil {
				return errors.Wrapf(err, "create %q", it.Name)
			}
			created.Add(1)
			lg.Info("Product created", zap.String("id", p.ID), zap.String("name", p.Name))
			return nil
		})
	}
	err := g.Wait()
	return created.Load(), err
}

// dedupe drops items whose name is already in the catalog or earlier in the
// file. Names compare case-insensitively. A bloom filter false positive
// skips a new product; it is logged so a rerun can pick it up.
func dedupe(existing []product.Product, items []seedProduct, lg *zap.Logger) []seedProduct {
	filter := bloom.NewWithEstimates(uint(max(len(existing)+len(items), 1000)), bloomFPR)
	for _, p := range existing {
		filter.AddString(nameKey(p.Name))
	}
	out := make([]seedProduct, 0, len(items))
	for _, it := range items {
		if filter.TestOrAddString(nameKey(it.Name)) {
			lg.Info("Skipping duplicate product", zap.String("name", it.Name))
			continue
		}
		out = append(out, it)
	}
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func readCatalogFile(path string) ([]seedProduct, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return decodeCatalog(r)
}

// decodeCatalog reads a JSON array of products. Prices may be numbers or
// numeric strings.
func decodeCatalog(r io.Reader) ([]seedProduct, error) {
	var items []seedProduct
	d := jx.Decode(r, 64*1024)
	err := d.Arr(func(d *jx.Decoder) error {
		var it seedProduct
		err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "name":
				it.Name, err = d.Str()
			case "details":
				it.Details, err = d.Str()
			case "regularPrice":
				it.RegularPrice, err = decodePrice(d)
			case "offerPrice":
				it.OfferPrice, err = decodePrice(d)
			case "image":
				it.Image, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(it.Name) == "" || it.Image == "" {
			return errors.Errorf("product #%d: name and image are required", len(items)+1)
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return items, nil
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(n.String())
}
