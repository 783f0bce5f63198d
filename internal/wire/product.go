package wire

import (
	"github.com/go-faster/jx"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
)

// EncodeProduct writes p as an object.
func EncodeProduct(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("regularPrice")
	encodeMoney(e, p.RegularPrice)
	e.FieldStart("offerPrice")
	encodeMoney(e, p.OfferPrice)
	e.FieldStart("details")
	e.Str(p.Details)
	e.FieldStart("imageURL")
	e.Str(p.ImageURL)
	if p.ImageID != "" {
		e.FieldStart("imageID")
		e.Str(p.ImageID)
	}
	e.FieldStart("createdAt")
	encodeTime(e, p.CreatedAt)
	e.ObjEnd()
}

// EncodeProducts writes ps as an array.
func EncodeProducts(e *jx.Encoder, ps []product.Product) {
	e.ArrStart()
	for i := range ps {
		EncodeProduct(e, &ps[i])
	}
	e.ArrEnd()
}

// DecodeProduct reads one product object.
func DecodeProduct(d *jx.Decoder) (*product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id", "_id":
			p.ID, err = d.Str()
		case "name":
			p.Name, err = decodeString(d)
		case "regularPrice":
			p.RegularPrice, err = decodeMoney(d)
		case "offerPrice":
			p.OfferPrice, err = decodeMoney(d)
		case "details":
			p.Details, err = decodeString(d)
		case "imageURL", "image":
			p.ImageURL, err = decodeString(d)
		case "imageID":
			p.ImageID, err = decodeString(d)
		case "createdAt":
			p.CreatedAt, err = decodeTime(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DecodeProducts reads an array of products.
func DecodeProducts(d *jx.Decoder) ([]product.Product, error) {
	var out []product.Product
	err := d.Arr(func(d *jx.Decoder) error {
		p, err := DecodeProduct(d)
		if err != nil {
			return err
		}
		out = append(out, *p)
		return nil
	})
	return out, err
}

// DeleteResult is the admin delete response payload.
type DeleteResult struct {
	ID           string
	ImageDeleted bool
	// Warning explains why the image was kept.
	Warning string
}

// Encode writes r as an object.
func (r DeleteResult) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(r.ID)
	e.FieldStart("imageDeleted")
	e.Bool(r.ImageDeleted)
	if r.Warning != "" {
		e.FieldStart("warning")
		e.Str(r.Warning)
	}
	e.ObjEnd()
}

// Decode reads r from d.
func (r *DeleteResult) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			r.ID, err = d.Str()
		case "imageDeleted":
			r.ImageDeleted, err = d.Bool()
		case "warning":
			r.Warning, err = decodeString(d)
		default:
			err = d.Skip()
		}
		return err
	})
}
