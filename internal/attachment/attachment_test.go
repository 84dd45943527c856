package attachment

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"Medilink/internal/model"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	content := []byte("%PDF-1.4 fake report body")
	encoded, err := Encode(File{Name: "report.pdf", MIME: "application/pdf", Data: content})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	msg := &model.Message{
		HasAttachment:  true,
		AttachmentType: model.AttachmentPDF,
		AttachmentData: encoded,
		AttachmentName: "report.pdf",
	}

	file, err := Decode(msg)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if file.Name != "report.pdf" {
		t.Errorf("name not preserved: got %q", file.Name)
	}
	if !bytes.Equal(file.Data, content) {
		t.Errorf("byte content not preserved: got %q", file.Data)
	}
}

func TestEncodeRejections(t *testing.T) {
	tests := []struct {
		name string
		file File
		want error
	}{
		{
			name: "wrong mime type",
			file: File{Name: "scan.png", MIME: "image/png", Data: []byte("png")},
			want: ErrUnsupportedType,
		},
		{
			name: "over the size limit",
			file: File{Name: "big.pdf", MIME: "application/pdf", Data: make([]byte, 6*1024*1024)},
			want: ErrTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.file); !errors.Is(err, tt.want) {
				t.Errorf("Encode error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  model.Message
		want error
	}{
		{
			name: "no attachment flagged",
			msg:  model.Message{Content: "hi"},
			want: ErrMissingPayload,
		},
		{
			name: "wrong attachment type",
			msg: model.Message{
				HasAttachment:  true,
				AttachmentType: "image",
				AttachmentData: "data:image/png;base64,aGk=",
			},
			want: ErrUnsupportedType,
		},
		{
			name: "payload without data url prefix",
			msg: model.Message{
				HasAttachment:  true,
				AttachmentType: model.AttachmentPDF,
				AttachmentData: "aGk=",
			},
			want: ErrCorruptPayload,
		},
		{
			name: "payload with broken base64",
			msg: model.Message{
				HasAttachment:  true,
				AttachmentType: model.AttachmentPDF,
				AttachmentData: "data:application/pdf;base64,!!not-base64!!",
			},
			want: ErrCorruptPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(&tt.msg); !errors.Is(err, tt.want) {
				t.Errorf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeDefaultsFilename(t *testing.T) {
	encoded, err := Encode(File{Name: "x.pdf", MIME: "application/pdf", Data: []byte("pdf")})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	file, err := Decode(&model.Message{
		HasAttachment:  true,
		AttachmentType: model.AttachmentPDF,
		AttachmentData: encoded,
	})
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if file.Name != "download.pdf" {
		t.Errorf("expected fallback filename, got %q", file.Name)
	}
}

func TestValidatePayload(t *testing.T) {
	small := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("small pdf"))
	atLimit := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(make([]byte, MaxSize))
	overByOne := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(make([]byte, MaxSize+1))
	huge := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(make([]byte, 6*1024*1024))

	tests := []struct {
		name string
		msg  model.Message
		want error
	}{
		{
			name: "text only",
			msg:  model.Message{Content: "hello"},
			want: nil,
		},
		{
			name: "valid attachment",
			msg: model.Message{
				HasAttachment:  true,
				AttachmentType: model.AttachmentPDF,
				AttachmentData: small,
			},
			want: nil,
		},
		{
			name: "exactly at the limit",
			msg: model.Message{
				HasAttachment:  true,
				AttachmentType: model.AttachmentPDF,
				AttachmentData: atLimit,
			},
			want: nil,
		},
		{
			name: "one byte over the limit",
			msg: model.Message{
				HasAttachment:  true,
				AttachmentType: model.AttachmentPDF,
				AttachmentData: overByOne,
			},
			want: ErrTooLarge,
		},
		{
			name: "six MiB rejected",
			msg: model.Message{
				HasAttachment:  true,
				AttachmentType: model.AttachmentPDF,
				AttachmentData: huge,
			},
			want: ErrTooLarge,
		},
		{
			name: "wrong declared type",
			msg: model.Message{
				HasAttachment:  true,
				AttachmentType: "docx",
				AttachmentData: small,
			},
			want: ErrUnsupportedType,
		},
		{
			name: "payload without flag",
			msg: model.Message{
				Content:        "hi",
				AttachmentData: small,
			},
			want: ErrCorruptPayload,
		},
		{
			name: "flag without data url",
			msg: model.Message{
				HasAttachment:  true,
				AttachmentType: model.AttachmentPDF,
				AttachmentData: "just text",
			},
			want: ErrCorruptPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(&tt.msg)
			if tt.want == nil {
				if err != nil {
					t.Errorf("ValidatePayload returned %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidatePayload error = %v, want %v", err, tt.want)
			}
		})
	}
}
