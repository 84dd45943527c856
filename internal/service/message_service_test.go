package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"Medilink/internal/attachment"
	"Medilink/internal/model"

	"go.uber.org/zap"
)

type fakeMessageRepo struct {
	inserted  []model.Message
	insertErr error
	stored    []model.Message
}

func (f *fakeMessageRepo) Insert(ctx context.Context, msg *model.Message) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.inserted = append(f.inserted, *msg)
	return "inserted-id", nil
}

func (f *fakeMessageRepo) History(ctx context.Context, a, b string) ([]model.Message, error) {
	return f.stored, nil
}

func (f *fakeMessageRepo) Involving(ctx context.Context, identity string) ([]model.Message, error) {
	return f.stored, nil
}

func (f *fakeMessageRepo) FindByID(ctx context.Context, id string) (*model.Message, error) {
	for i := range f.stored {
		if f.stored[i].ID.Hex() == id {
			return &f.stored[i], nil
		}
	}
	return nil, nil
}

func newTestService(repo *fakeMessageRepo) MessageService {
	return NewMessageService(repo, zap.NewNop())
}

func pdfDataURL(size int) string {
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(make([]byte, size))
}

func TestSendPersistsValidMessage(t *testing.T) {
	repo := &fakeMessageRepo{}
	s := newTestService(repo)

	composed := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	msg := &model.Message{
		Sender:    "alice@clinic.test",
		Receiver:  "bob@clinic.test",
		Content:   "hi",
		Timestamp: composed,
	}
	if err := s.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if len(repo.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(repo.inserted))
	}
	got := repo.inserted[0]
	if !got.Timestamp.Equal(composed) {
		t.Errorf("client-assigned timestamp replaced: %v", got.Timestamp)
	}
	if got.AttachmentType != model.AttachmentNone {
		t.Errorf("attachment type = %q, want %q", got.AttachmentType, model.AttachmentNone)
	}
}

func TestSendStampsMissingTimestamp(t *testing.T) {
	repo := &fakeMessageRepo{}
	s := newTestService(repo)

	msg := &model.Message{Sender: "a@x", Receiver: "b@x", Content: "hi"}
	if err := s.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if repo.inserted[0].Timestamp.IsZero() {
		t.Error("zero timestamp persisted")
	}
}

func TestSendRejections(t *testing.T) {
	tests := []struct {
		name string
		msg  model.Message
		want error
	}{
		{
			name: "empty message",
			msg:  model.Message{Sender: "a@x", Receiver: "b@x"},
			want: ErrEmptyMessage,
		},
		{
			name: "oversized attachment",
			msg: model.Message{
				Sender:         "a@x",
				Receiver:       "b@x",
				Content:        "Sent an attachment",
				HasAttachment:  true,
				AttachmentType: model.AttachmentPDF,
				AttachmentData: pdfDataURL(6 * 1024 * 1024),
				AttachmentName: "big.pdf",
			},
			want: attachment.ErrTooLarge,
		},
		{
			name: "wrong attachment type",
			msg: model.Message{
				Sender:         "a@x",
				Receiver:       "b@x",
				Content:        "Sent an attachment",
				HasAttachment:  true,
				AttachmentType: "png",
				AttachmentData: pdfDataURL(10),
			},
			want: attachment.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeMessageRepo{}
			s := newTestService(repo)

			err := s.Send(context.Background(), &tt.msg)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Send error = %v, want %v", err, tt.want)
			}
			// rejection must not create state
			if len(repo.inserted) != 0 {
				t.Errorf("rejected message was persisted")
			}
		})
	}
}

func TestSendSurfacesPersistenceFailure(t *testing.T) {
	repo := &fakeMessageRepo{insertErr: errors.New("mongo down")}
	s := newTestService(repo)

	err := s.Send(context.Background(), &model.Message{
		Sender: "a@x", Receiver: "b@x", Content: "hi",
	})
	if err == nil {
		t.Fatal("persistence failure was swallowed")
	}
}

func TestHistoryRequiresParticipation(t *testing.T) {
	s := newTestService(&fakeMessageRepo{})

	_, err := s.History(context.Background(), "mallory@x", "a@x", "b@x")
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("History error = %v, want %v", err, ErrNotParticipant)
	}

	if _, err := s.History(context.Background(), "b@x", "a@x", "b@x"); err != nil {
		t.Fatalf("participant denied: %v", err)
	}
}

func TestHistoryNeverReturnsNil(t *testing.T) {
	s := newTestService(&fakeMessageRepo{})

	messages, err := s.History(context.Background(), "a@x", "a@x", "b@x")
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if messages == nil {
		t.Fatal("empty conversation should marshal as [], not null")
	}
}

func TestConversationsReducesToLatestPerPartner(t *testing.T) {
	// repo returns newest first, as Involving does
	repo := &fakeMessageRepo{stored: []model.Message{
		{Sender: "bob@x", Receiver: "me@x", Content: "newest from bob", Timestamp: time.Unix(300, 0)},
		{Sender: "me@x", Receiver: "carol@x", Content: "to carol", Timestamp: time.Unix(200, 0)},
		{Sender: "me@x", Receiver: "bob@x", Content: "older to bob", Timestamp: time.Unix(100, 0)},
	}}
	s := newTestService(repo)

	previews, err := s.Conversations(context.Background(), "me@x")
	if err != nil {
		t.Fatalf("Conversations returned error: %v", err)
	}
	if len(previews) != 2 {
		t.Fatalf("expected 2 previews, got %d", len(previews))
	}
	if previews[0].Partner != "bob@x" || previews[0].LastContent != "newest from bob" {
		t.Errorf("first preview = %+v", previews[0])
	}
	if previews[1].Partner != "carol@x" {
		t.Errorf("second preview = %+v", previews[1])
	}
}

func TestAttachmentLookupErrors(t *testing.T) {
	s := newTestService(&fakeMessageRepo{})

	if _, err := s.Attachment(context.Background(), "a@x", ""); !errors.Is(err, ErrInvalidAttachmentRef) {
		t.Errorf("empty id error = %v", err)
	}
	if _, err := s.Attachment(context.Background(), "a@x", "656566656665666566656665"); !errors.Is(err, ErrAttachmentNotFound) {
		t.Errorf("unknown id error = %v", err)
	}
}
