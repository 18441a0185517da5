package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventmis/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrInvalidEntry = errors.New("audit: invalid entry")

// Observer is notified when an append fails. Metrics implement it.
type Observer interface {
	AuditAppendFailed(action Action, entity string)
}

// Service writes and reads the audit trail.
//
// Mutating services call Record from inside their own transaction, so an
// audit failure rolls the mutation back instead of being lost.
type Service struct {
	repo     Repository
	observer Observer
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// WithObserver attaches a failure observer.
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// Append validates and stores e. Details defaults to "<ACTION> <Entity>".
func (s *Service) Append(ctx context.Context, e Entry) (Entry, error) {
	if s.repo == nil {
		return Entry{}, errors.New("audit: repository not configured")
	}
	e.Action = Action(strings.TrimSpace(string(e.Action)))
	e.Entity = strings.TrimSpace(e.Entity)
	e.User = strings.TrimSpace(e.User)
	if e.Action == "" || e.Entity == "" || e.User == "" {
		return Entry{}, fmt.Errorf("%w: action, entity and user are required", ErrInvalidEntry)
	}
	if e.Details == "" {
		e.Details = fmt.Sprintf("%s %s", e.Action, e.Entity)
	}
	if len(e.Changes) == 0 {
		e.Changes = datatypes.JSON("{}")
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.clock().UTC()
	}

	if err := s.repo.Append(ctx, e); err != nil {
		if s.observer != nil {
			s.observer.AuditAppendFailed(e.Action, e.Entity)
		}
		logger.From(ctx).Error("audit append failed",
			"action", e.Action, "entity", e.Entity, "entity_id", e.EntityID, "err", err)
		return Entry{}, fmt.Errorf("audit append: %w", err)
	}
	return e, nil
}

// Record is the in-process call used by mutating services.
// changes is marshalled to JSON; nil becomes {}.
func (s *Service) Record(ctx context.Context, action Action, entity, entityID, details, actor string, changes any) error {
	raw, err := marshalChanges(changes)
	if err != nil {
		return fmt.Errorf("audit changes: %w", err)
	}
	_, err = s.Append(ctx, Entry{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
		User:     actor,
		Changes:  raw,
	})
	return err
}

// List returns the full trail, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Entry{}
	}
	return out, nil
}

func marshalChanges(v any) (datatypes.JSON, error) {
	switch c := v.(type) {
	case nil:
		return datatypes.JSON("{}"), nil
	case datatypes.JSON:
		return c, nil
	case json.RawMessage:
		return datatypes.JSON(c), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// BeforeAfter is the conventional payload for UPDATE entries.
type BeforeAfter struct {
	Before any `json:"before"`
	After  any `json:"after"`
}
