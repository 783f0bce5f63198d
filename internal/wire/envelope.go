// Package wire is the JSON codec for the storefront HTTP API.
//
// Every response is an envelope: {"success":true,"data":...} or
// {"success":false,"message":"..."}. Money travels as JSON numbers rendered
// from the exact decimal value.
package wire

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Envelope is a decoded response.
type Envelope struct {
	Success bool
	Message string
	// Data is the raw payload, nil when absent or null.
	Data jx.Raw
}

// Into decodes Data with fn. A missing payload is an error.
func (e *Envelope) Into(fn func(d *jx.Decoder) error) error {
	if len(e.Data) == 0 {
		return errors.New("response has no data")
	}
	return fn(jx.DecodeBytes(e.Data))
}

// Success renders a successful envelope. data may be nil.
func Success(data func(e *jx.Encoder)) []byte {
	return encode(true, "", data)
}

// SuccessMessage renders a successful envelope with a human message.
func SuccessMessage(msg string, data func(e *jx.Encoder)) []byte {
	return encode(true, msg, data)
}

// Failure renders an error envelope.
func Failure(msg string) []byte {
	return encode(false, msg, nil)
}

func encode(ok bool, msg string, data func(e *jx.Encoder)) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("success")
	e.Bool(ok)
	if msg != "" {
		e.FieldStart("message")
		e.Str(msg)
	}
	if data != nil {
		e.FieldStart("data")
		data(&e)
	}
	e.ObjEnd()
	return e.Bytes()
}

// DecodeEnvelope parses a response body.
func DecodeEnvelope(b []byte) (*Envelope, error) {
	var env Envelope
	err := jx.DecodeBytes(b).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "success":
			v, err := d.Bool()
			env.Success = v
			return err
		case "message":
			v, err := d.Str()
			env.Message = v
			return err
		case "data":
			if d.Next() == jx.Null {
				return d.Null()
			}
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			env.Data = append(jx.Raw(nil), raw...)
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode envelope")
	}
	return &env, nil
}

func encodeMoney(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}

// decodeMoney accepts a JSON number or a numeric string.
func decodeMoney(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(string(n))
	default:
		return decimal.Zero, errors.Errorf("expected number, got %s", d.Next())
	}
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339Nano))
}

func decodeTime(d *jx.Decoder) (time.Time, error) {
	s, err := d.Str()
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// decodeString reads a string, treating null as empty.
func decodeString(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// decodeInt reads an integer, accepting numeric strings from form-style
// clients.
func decodeInt(d *jx.Decoder) (int, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return 0, err
		}
		return int(v.IntPart()), nil
	}
	return d.Int()
}
