package wire

import (
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/checkout"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
)

// CartView is the session cart as returned by the API.
type CartView struct {
	ID        string
	Lines     []cart.Line
	ItemCount int
	Subtotal  decimal.Decimal
}

// NewCartView summarizes lines.
func NewCartView(id string, lines []cart.Line) CartView {
	v := CartView{ID: id, Lines: lines, Subtotal: cart.Subtotal(lines)}
	for _, l := range lines {
		v.ItemCount += l.Quantity
	}
	return v
}

// Encode writes v as an object.
func (v CartView) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(v.ID)
	e.FieldStart("lines")
	e.ArrStart()
	for _, l := range v.Lines {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(l.ProductID)
		e.FieldStart("name")
		e.Str(l.Name)
		e.FieldStart("unitPrice")
		encodeMoney(e, l.UnitPrice)
		if l.ImageRef != "" {
			e.FieldStart("imageRef")
			e.Str(l.ImageRef)
		}
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.FieldStart("total")
		encodeMoney(e, l.Total())
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("itemCount")
	e.Int(v.ItemCount)
	e.FieldStart("subtotal")
	encodeMoney(e, v.Subtotal)
	e.ObjEnd()
}

// Decode reads v from d.
func (v *CartView) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			v.ID, err = d.Str()
		case "lines":
			v.Lines = v.Lines[:0]
			err = d.Arr(func(d *jx.Decoder) error {
				var l cart.Line
				err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "productId":
						l.ProductID, err = d.Str()
					case "name":
						l.Name, err = decodeString(d)
					case "unitPrice":
						l.UnitPrice, err = decodeMoney(d)
					case "imageRef":
						l.ImageRef, err = decodeString(d)
					case "quantity":
						l.Quantity, err = decodeInt(d)
					default:
						err = d.Skip()
					}
					return err
				})
				v.Lines = append(v.Lines, l)
				return err
			})
		case "itemCount":
			v.ItemCount, err = d.Int()
		case "subtotal":
			v.Subtotal, err = decodeMoney(d)
		default:
			err = d.Skip()
		}
		return err
	})
}

// AddToCartRequest adds one unit of a catalog product.
type AddToCartRequest struct {
	ProductID string `validate:"required"`
}

// Encode writes r as an object.
func (r AddToCartRequest) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Str(r.ProductID)
	e.ObjEnd()
}

// Decode reads r from d.
func (r *AddToCartRequest) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		if key != "productId" {
			return d.Skip()
		}
		var err error
		r.ProductID, err = decodeString(d)
		return err
	})
}

// QuantityRequest sets a line quantity. Values below one clamp to one.
type QuantityRequest struct {
	Quantity int
}

// Encode writes r as an object.
func (r QuantityRequest) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("quantity")
	e.Int(r.Quantity)
	e.ObjEnd()
}

// Decode reads r from d.
func (r *QuantityRequest) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		var err error
		r.Quantity, err = decodeInt(d)
		return err
	})
}

// EncodeForm writes a checkout form.
func EncodeForm(e *jx.Encoder, f *checkout.Form) {
	e.ObjStart()
	e.FieldStart("customerName")
	e.Str(f.CustomerName)
	e.FieldStart("phone")
	e.Str(f.Phone)
	e.FieldStart("address")
	e.Str(f.Address)
	e.FieldStart("shippingZone")
	e.Str(string(f.ShippingZone))
	e.ObjEnd()
}

// DecodeForm reads a checkout form. Legacy zone names are normalized; an
// unknown zone is kept so validation reports it.
func DecodeForm(d *jx.Decoder) (*checkout.Form, error) {
	var f checkout.Form
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var (
			s   string
			err error
		)
		switch key {
		case "customerName":
			f.CustomerName, err = decodeString(d)
		case "phone":
			f.Phone, err = decodeString(d)
		case "address":
			f.Address, err = decodeString(d)
		case "shippingZone", "shippingLocation":
			s, err = decodeString(d)
			if zone, perr := order.ParseShippingZone(s); perr == nil {
				f.ShippingZone = zone
			} else {
				f.ShippingZone = order.ShippingZone(s)
			}
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Encode writes r as an object.
func (r LoginRequest) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("email")
	e.Str(r.Email)
	e.FieldStart("password")
	e.Str(r.Password)
	e.ObjEnd()
}

// Decode reads r from d.
func (r *LoginRequest) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "email":
			r.Email, err = decodeString(d)
		case "password":
			r.Password, err = decodeString(d)
		default:
			err = d.Skip()
		}
		return err
	})
}
