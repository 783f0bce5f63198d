package wire

import (
	"github.com/go-faster/jx"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
)

func encodeLineItems(e *jx.Encoder, items []order.LineItem) {
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(it.ProductID)
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("unitPrice")
		encodeMoney(e, it.UnitPrice)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		if it.ImageRef != "" {
			e.FieldStart("imageRef")
			e.Str(it.ImageRef)
		}
		e.ObjEnd()
	}
	e.ArrEnd()
}

func decodeLineItems(d *jx.Decoder) ([]order.LineItem, error) {
	var items []order.LineItem
	err := d.Arr(func(d *jx.Decoder) error {
		var it order.LineItem
		err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "productId", "_id", "id":
				it.ProductID, err = d.Str()
			case "name":
				it.Name, err = decodeString(d)
			case "unitPrice", "price", "offerPrice":
				it.UnitPrice, err = decodeMoney(d)
			case "quantity":
				it.Quantity, err = decodeInt(d)
			case "imageRef", "image":
				it.ImageRef, err = decodeString(d)
			default:
				err = d.Skip()
			}
			return err
		})
		if err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	return items, err
}

// EncodeOrder writes o as an object.
func EncodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("customerName")
	e.Str(o.CustomerName)
	e.FieldStart("phone")
	e.Str(o.Phone)
	e.FieldStart("address")
	e.Str(o.Address)
	e.FieldStart("shippingZone")
	e.Str(string(o.ShippingZone))
	e.FieldStart("shippingFee")
	encodeMoney(e, o.ShippingFee)
	e.FieldStart("totalPrice")
	encodeMoney(e, o.TotalPrice)
	e.FieldStart("lineItems")
	encodeLineItems(e, o.LineItems)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("createdAt")
	encodeTime(e, o.CreatedAt)
	e.ObjEnd()
}

// EncodeOrders writes os as an array.
func EncodeOrders(e *jx.Encoder, os []order.Order) {
	e.ArrStart()
	for i := range os {
		EncodeOrder(e, &os[i])
	}
	e.ArrEnd()
}

// DecodeOrder reads one order object.
func DecodeOrder(d *jx.Decoder) (*order.Order, error) {
	var o order.Order
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var (
			s   string
			err error
		)
		switch key {
		case "id", "_id":
			o.ID, err = d.Str()
		case "customerName":
			o.CustomerName, err = decodeString(d)
		case "phone":
			o.Phone, err = decodeString(d)
		case "address":
			o.Address, err = decodeString(d)
		case "shippingZone":
			s, err = decodeString(d)
			o.ShippingZone = order.ShippingZone(s)
		case "shippingFee":
			o.ShippingFee, err = decodeMoney(d)
		case "totalPrice":
			o.TotalPrice, err = decodeMoney(d)
		case "lineItems", "cartItems":
			o.LineItems, err = decodeLineItems(d)
		case "status":
			s, err = decodeString(d)
			o.Status = order.Status(s)
		case "createdAt":
			o.CreatedAt, err = decodeTime(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// DecodeOrders reads an array of orders.
func DecodeOrders(d *jx.Decoder) ([]order.Order, error) {
	var out []order.Order
	err := d.Arr(func(d *jx.Decoder) error {
		o, err := DecodeOrder(d)
		if err != nil {
			return err
		}
		out = append(out, *o)
		return nil
	})
	return out, err
}

// EncodeDraft writes the order creation request body.
func EncodeDraft(e *jx.Encoder, dr *order.Draft) {
	e.ObjStart()
	e.FieldStart("customerName")
	e.Str(dr.CustomerName)
	e.FieldStart("phone")
	e.Str(dr.Phone)
	e.FieldStart("address")
	e.Str(dr.Address)
	e.FieldStart("shippingZone")
	e.Str(string(dr.ShippingZone))
	e.FieldStart("lineItems")
	encodeLineItems(e, dr.LineItems)
	e.FieldStart("totalPrice")
	encodeMoney(e, dr.TotalPrice)
	e.ObjEnd()
}

// DecodeDraft reads an order creation request. The zone is kept verbatim;
// the order service parses it.
func DecodeDraft(d *jx.Decoder) (*order.Draft, error) {
	var dr order.Draft
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var (
			s   string
			err error
		)
		switch key {
		case "customerName":
			dr.CustomerName, err = decodeString(d)
		case "phone":
			dr.Phone, err = decodeString(d)
		case "address":
			dr.Address, err = decodeString(d)
		case "shippingZone", "shippingLocation":
			s, err = decodeString(d)
			dr.ShippingZone = order.ShippingZone(s)
		case "lineItems", "cartItems":
			dr.LineItems, err = decodeLineItems(d)
		case "totalPrice":
			dr.TotalPrice, err = decodeMoney(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dr, nil
}

// StatusRequest is the body of a status transition.
type StatusRequest struct {
	Status order.Status `validate:"required"`
}

// Encode writes r as an object.
func (r StatusRequest) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("status")
	e.Str(string(r.Status))
	e.ObjEnd()
}

// Decode reads r from d.
func (r *StatusRequest) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		if key != "status" {
			return d.Skip()
		}
		s, err := decodeString(d)
		r.Status = order.Status(s)
		return err
	})
}
