package handler

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
	"github.com/IhossainpHero/Arboom-bd/internal/wire"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, errors.Wrap(err, "list products"))
		return
	}
	writeData(w, http.StatusOK, "", func(e *jx.Encoder) { wire.EncodeProducts(e, products) })
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", func(e *jx.Encoder) { wire.EncodeProduct(e, p) })
}

// createProduct accepts multipart fields name, details, regularPrice,
// offerPrice and the file part image. The body is read part by part into
// memory; nothing is spooled to disk.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	form, err := readProductForm(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in := product.Input{
		Name:      form.fields["name"],
		Details:   form.fields["details"],
		Image:     form.image,
		ImageName: form.imageName,
	}
	if in.RegularPrice, err = parsePrice(form.fields["regularPrice"]); err != nil {
		writeError(w, r, &product.ValidationError{Field: "regularPrice", Reason: "must be a number"})
		return
	}
	if in.OfferPrice, err = parsePrice(form.fields["offerPrice"]); err != nil {
		writeError(w, r, &product.ValidationError{Field: "offerPrice", Reason: "must be a number"})
		return
	}
	if !form.hasImage {
		writeError(w, r, product.ErrImageRequired)
		return
	}

	p, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	zctx.From(r.Context()).Info("Product created",
		zap.String("product_id", p.ID),
		zap.String("image_id", p.ImageID),
	)
	writeData(w, http.StatusCreated, "Product added successfully", func(e *jx.Encoder) { wire.EncodeProduct(e, p) })
}

// deleteProduct takes the id from the path or the id query parameter.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		id = r.URL.Query().Get("id")
	}
	if strings.TrimSpace(id) == "" {
		writeError(w, r, newBadRequest("product id is required", nil))
		return
	}

	res, err := h.catalog.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := wire.DeleteResult{ID: res.Product.ID, ImageDeleted: res.Product.ImageID != "" && res.ImageErr == nil}
	if res.ImageErr != nil {
		out.Warning = "product deleted but its image could not be removed"
	}
	writeData(w, http.StatusOK, "Product deleted successfully", out.Encode)
}

// maxFieldBytes bounds a single non-file form field.
const maxFieldBytes = 64 << 10

type productForm struct {
	fields    map[string]string
	image     []byte
	imageName string
	hasImage  bool
}

// readProductForm streams the multipart body. The first image part wins;
// later ones and unknown file parts are drained and dropped.
func readProductForm(r *http.Request) (*productForm, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, newBadRequest("invalid multipart form", err)
	}
	form := &productForm{fields: make(map[string]string)}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			return nil, newBadRequest("invalid multipart form", err)
		}
		name := part.FormName()
		switch {
		case name == "image" && !form.hasImage:
			var buf bytes.Buffer
			if _, err := buf.ReadFrom(part); err != nil {
				_ = part.Close()
				return nil, newBadRequest("read image", err)
			}
			form.image = buf.Bytes()
			form.imageName = part.FileName()
			form.hasImage = true
		case part.FileName() == "" && name != "":
			data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			if err != nil {
				_ = part.Close()
				return nil, newBadRequest("invalid multipart form", err)
			}
			if len(data) > maxFieldBytes {
				_ = part.Close()
				return nil, newBadRequest("form field "+name+" too large", nil)
			}
			if _, ok := form.fields[name]; !ok {
				form.fields[name] = string(data)
			}
		}
		_ = part.Close()
	}
}

// parsePrice treats an empty field as zero.
func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
