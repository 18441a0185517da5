package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"eventmis/internal/audit"
	"eventmis/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("message not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

const replyPrefix = "Re: "

type Auditor interface {
	Record(ctx context.Context, action audit.Action, entity, entityID, details, actor string, changes any) error
}

type Service struct {
	db    *gorm.DB
	tx    *store.Transactor
	audit Auditor
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *gorm.DB, tx *store.Transactor, auditor Auditor) *Service {
	return &Service{db: db, tx: tx, audit: auditor, clock: time.Now}
}

type SendInput struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Type      string `json:"type"`
	Read      bool   `json:"read"`
	ParentID  string `json:"parentId"`
}

type UpdateInput struct {
	Recipient *string `json:"recipient"`
	Subject   *string `json:"subject"`
	Body      *string `json:"body"`
	Read      *bool   `json:"read"`
}

// Send stores a new message. A parentId must name an existing message.
func (s *Service) Send(ctx context.Context, actor string, in SendInput) (Message, error) {
	if strings.TrimSpace(in.Recipient) == "" || strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Body) == "" {
		return Message{}, fmt.Errorf("%w: missing required fields: recipient, subject, body", ErrInvalidArgument)
	}
	typ := MessageType(strings.TrimSpace(in.Type))
	if typ == "" {
		typ = TypeInbox
	}
	if !typ.Valid() {
		return Message{}, fmt.Errorf("%w: type must be Inbox or Announcement", ErrInvalidArgument)
	}

	now := s.clock().UTC()
	m := Message{
		ID:        uuid.NewString(),
		Recipient: strings.TrimSpace(in.Recipient),
		Subject:   strings.TrimSpace(in.Subject),
		Body:      in.Body,
		Type:      typ,
		Read:      in.Read,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if pid := strings.TrimSpace(in.ParentID); pid != "" {
			if _, err := find(ctx, s.db, pid); err != nil {
				if errors.Is(err, ErrNotFound) {
					return fmt.Errorf("%w: parent message %q does not exist", ErrInvalidArgument, pid)
				}
				return err
			}
			m.ParentID = &pid
		}
		return s.create(ctx, actor, &m)
	})
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

// Reply answers parentID, copying its recipient and prefixing its subject.
func (s *Service) Reply(ctx context.Context, actor, parentID, body string) (Message, error) {
	if strings.TrimSpace(parentID) == "" {
		return Message{}, fmt.Errorf("%w: parent id is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(body) == "" {
		return Message{}, fmt.Errorf("%w: body is required", ErrInvalidArgument)
	}
	var out Message
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		parent, err := find(ctx, s.db, parentID)
		if err != nil {
			return err
		}
		subject := parent.Subject
		if !strings.HasPrefix(subject, replyPrefix) {
			subject = replyPrefix + subject
		}
		now := s.clock().UTC()
		out = Message{
			ID:        uuid.NewString(),
			Recipient: parent.Recipient,
			Subject:   subject,
			Body:      body,
			Type:      TypeInbox,
			ParentID:  &parent.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.create(ctx, actor, &out)
	})
	if err != nil {
		return Message{}, err
	}
	return out, nil
}

func (s *Service) create(ctx context.Context, actor string, m *Message) error {
	if err := store.Conn(ctx, s.db).Create(m).Error; err != nil {
		return err
	}
	return s.audit.Record(ctx, audit.ActionCreate, audit.EntityMessage, m.ID, "Sent message: "+m.Subject, actor, m)
}

// List returns every message, newest first.
func (s *Service) List(ctx context.Context) ([]Message, error) {
	out := []Message{}
	if err := store.Conn(ctx, s.db).Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Threads groups messages under their root. Messages whose parent no longer
// exists are roots themselves.
func (s *Service) Threads(ctx context.Context) ([]Thread, error) {
	msgs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildThreads(msgs), nil
}

func BuildThreads(msgs []Message) []Thread {
	byID := make(map[string]Message, len(msgs))
	for _, m := range msgs {
		byID[m.ID] = m
	}

	rootOf := func(m Message) string {
		seen := map[string]bool{m.ID: true}
		cur := m
		for cur.ParentID != nil {
			p, ok := byID[*cur.ParentID]
			if !ok || seen[p.ID] {
				break
			}
			seen[p.ID] = true
			cur = p
		}
		return cur.ID
	}

	threads := map[string]*Thread{}
	var order []string
	for _, m := range msgs {
		if m.ParentID != nil {
			if _, ok := byID[*m.ParentID]; ok {
				continue
			}
		}
		threads[m.ID] = &Thread{Message: m, Replies: []Message{}}
		order = append(order, m.ID)
	}
	for _, m := range msgs {
		root := rootOf(m)
		if root == m.ID {
			continue
		}
		if t, ok := threads[root]; ok {
			t.Replies = append(t.Replies, m)
		}
	}

	out := make([]Thread, 0, len(order))
	for _, id := range order {
		t := threads[id]
		sort.SliceStable(t.Replies, func(i, j int) bool {
			return t.Replies[i].CreatedAt.Before(t.Replies[j].CreatedAt)
		})
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Service) Update(ctx context.Context, actor, id string, in UpdateInput) (Message, error) {
	if strings.TrimSpace(id) == "" {
		return Message{}, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	var out Message
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		before, err := find(ctx, s.db, id)
		if err != nil {
			return err
		}
		after := before
		for _, f := range []struct {
			name string
			dst  *string
			v    *string
		}{
			{"recipient", &after.Recipient, in.Recipient},
			{"subject", &after.Subject, in.Subject},
			{"body", &after.Body, in.Body},
		} {
			if f.v == nil {
				continue
			}
			if strings.TrimSpace(*f.v) == "" {
				return fmt.Errorf("%w: %s cannot be empty", ErrInvalidArgument, f.name)
			}
			*f.dst = *f.v
		}
		if in.Read != nil {
			after.Read = *in.Read
		}
		after.UpdatedAt = s.clock().UTC()

		if err := store.UpdateAll(ctx, s.db, &after); err != nil {
			if errors.Is(err, store.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		out = after
		return s.audit.Record(ctx, audit.ActionUpdate, audit.EntityMessage, after.ID,
			"Updated message: "+after.Subject, actor, audit.BeforeAfter{Before: before, After: after})
	})
	if err != nil {
		return Message{}, err
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, actor, id string) (Message, error) {
	read := true
	return s.Update(ctx, actor, id, UpdateInput{Read: &read})
}

// Delete removes one message. Its replies stay and become top-level.
func (s *Service) Delete(ctx context.Context, actor, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := find(ctx, s.db, id)
		if err != nil {
			return err
		}
		res := store.Conn(ctx, s.db).Where("id = ?", id).Delete(&Message{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return s.audit.Record(ctx, audit.ActionDelete, audit.EntityMessage, id,
			"Deleted message: "+existing.Subject, actor, existing)
	})
}

func find(ctx context.Context, db *gorm.DB, id string) (Message, error) {
	var m Message
	if err := store.Conn(ctx, db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Message{}, ErrNotFound
		}
		return Message{}, err
	}
	return m, nil
}
