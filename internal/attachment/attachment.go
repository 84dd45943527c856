// Package attachment validates and encodes the single document payload a
// chat message may carry. The encoding is a data URL embedded in the message
// itself rather than a reference to blob storage; the 5 MiB ceiling is what
// makes that acceptable.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"Medilink/internal/model"
)

// MaxSize is the decoded size ceiling for an attachment.
const MaxSize = 5 * 1024 * 1024

const (
	pdfMIME       = "application/pdf"
	dataURLPrefix = "data:" + pdfMIME + ";base64,"
)

var (
	ErrUnsupportedType = errors.New("only PDF attachments are supported")
	ErrTooLarge        = fmt.Errorf("attachment exceeds the %d MiB limit", MaxSize/(1024*1024))
	ErrMissingPayload  = errors.New("message carries no attachment payload")
	ErrCorruptPayload  = errors.New("attachment payload is not a valid PDF data URL")
)

// File is a decoded attachment: the original filename plus raw bytes.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Encode validates the file and returns its in-band data URL representation.
// The error identifies which constraint failed so the caller can surface a
// precise reason.
func Encode(f File) (string, error) {
	if f.MIME != pdfMIME {
		return "", ErrUnsupportedType
	}
	if len(f.Data) > MaxSize {
		return "", ErrTooLarge
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(f.Data), nil
}

// Decode reconstructs a downloadable file from a stored message. Pure: it
// only reads the message fields.
func Decode(msg *model.Message) (File, error) {
	if !msg.HasAttachment || msg.AttachmentData == "" {
		return File{}, ErrMissingPayload
	}
	if msg.AttachmentType != model.AttachmentPDF {
		return File{}, ErrUnsupportedType
	}

	encoded, ok := strings.CutPrefix(msg.AttachmentData, dataURLPrefix)
	if !ok {
		return File{}, ErrCorruptPayload
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	name := msg.AttachmentName
	if name == "" {
		name = "download.pdf"
	}
	return File{Name: name, MIME: pdfMIME, Data: data}, nil
}

// ValidatePayload re-checks an incoming message's attachment at the REST
// boundary. The browser validates before sending, but nothing stops a direct
// API caller from skipping that, and an oversized or mistyped payload must
// never reach the store.
func ValidatePayload(msg *model.Message) error {
	if !msg.HasAttachment {
		if msg.AttachmentData != "" {
			return ErrCorruptPayload
		}
		return nil
	}
	if msg.AttachmentType != model.AttachmentPDF {
		return ErrUnsupportedType
	}

	encoded, ok := strings.CutPrefix(msg.AttachmentData, dataURLPrefix)
	if !ok {
		return ErrCorruptPayload
	}
	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxSize {
		// DecodedLen overestimates by up to two padding bytes, so confirm
		// with the exact count before rejecting
		if size, err := decodedSize(encoded); err != nil || size > MaxSize {
			if err != nil {
				return fmt.Errorf("%w: %v", ErrCorruptPayload, err)
			}
			return ErrTooLarge
		}
	}
	return nil
}

// decodedSize computes the exact decoded byte count from the base64 text
// without decoding the whole payload.
func decodedSize(encoded string) (int, error) {
	n := len(encoded)
	if n == 0 {
		return 0, nil
	}
	if n%4 != 0 {
		return 0, errors.New("base64 payload length not a multiple of 4")
	}
	size := n / 4 * 3
	if strings.HasSuffix(encoded, "==") {
		size -= 2
	} else if strings.HasSuffix(encoded, "=") {
		size--
	}
	return size, nil
}
