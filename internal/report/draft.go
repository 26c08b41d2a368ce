package report

import (
	"encoding/base64"
	"fmt"

	apperrors "aduan/internal/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// ImagePayload is an image encoded for transport to the scripting endpoint.
type ImagePayload struct {
	Name     string
	MimeType string
	DataURL  string // data:<mime>;base64,<bytes>
	Size     int64
}

// NewImagePayload encodes raw image bytes. Payloads larger than maxBytes are
// rejected before anything is encoded. The MIME type is sniffed from the
// content, not taken from the client.
func NewImagePayload(name string, data []byte, maxBytes int64) (*ImagePayload, error) {
	size := int64(len(data))
	if size > maxBytes {
		return nil, apperrors.NewOversizeError(size, maxBytes)
	}
	if size == 0 {
		return nil, nil
	}

	mime := mimetype.Detect(data)
	if !mime.Is("image/jpeg") && !mime.Is("image/png") && !mime.Is("image/gif") &&
		!mime.Is("image/webp") && !mime.Is("image/heic") && !mime.Is("image/bmp") {
		return nil, apperrors.NewValidationError("image", fmt.Sprintf("unsupported file type %s", mime.String()))
	}

	return &ImagePayload{
		Name:     name,
		MimeType: mime.String(),
		DataURL:  "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data),
		Size:     size,
	}, nil
}

// Draft holds in-progress form input until it is submitted or reset.
type Draft struct {
	TeacherName      string `validate:"required"`
	Location         string `validate:"required"`
	IssueDescription string `validate:"required"`
	Image            *ImagePayload
	PreviewRef       string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the required form fields are filled in.
func (d Draft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return apperrors.NewValidationError(verrs[0].Field(), verrs[0].Tag())
	}
	return apperrors.NewValidationError("", err.Error())
}

// HasImage reports whether an image is attached.
func (d Draft) HasImage() bool {
	return d.Image != nil && d.Image.DataURL != ""
}

