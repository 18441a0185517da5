package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventmis/internal/audit"
	"eventmis/pkg/utils"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

const recentActivityLimit = 10

type Service struct {
	repo Repository
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository) *Service { return &Service{repo: repo, clock: time.Now} }

// Generate builds a report over the full audit history.
func (s *Service) Generate(ctx context.Context) (Report, error) {
	if s.repo == nil {
		return Report{}, errors.New("reporting: repository not configured")
	}
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return Report{}, err
	}
	return Aggregate(entries, s.clock().UTC()), nil
}

// Transactions returns the audit history narrowed by f.
func (s *Service) Transactions(ctx context.Context, f Filter) ([]audit.Entry, error) {
	if s.repo == nil {
		return nil, errors.New("reporting: repository not configured")
	}
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(entries, f), nil
}

// Aggregate groups entries by action and entity and counts them.
func Aggregate(entries []audit.Entry, at time.Time) Report {
	if entries == nil {
		entries = []audit.Entry{}
	}
	out := Report{
		Transactions: entries,
		ByAction:     map[string][]audit.Entry{},
		ByEntity:     map[string][]audit.Entry{},
		Timestamp:    at,
	}
	for _, e := range entries {
		out.Stats.TotalTransactions++
		switch e.Action {
		case audit.ActionCreate:
			out.Stats.CreateCount++
		case audit.ActionUpdate:
			out.Stats.UpdateCount++
		case audit.ActionDelete:
			out.Stats.DeleteCount++
		case audit.ActionArchive:
			out.Stats.ArchiveCount++
		case audit.ActionRestore:
			out.Stats.RestoreCount++
		case audit.ActionLogin:
			out.Stats.LoginCount++
		default:
			out.Stats.OtherCount++
		}
		out.ByAction[string(e.Action)] = append(out.ByAction[string(e.Action)], e)
		out.ByEntity[e.Entity] = append(out.ByEntity[e.Entity], e)
	}
	return out
}

// Apply returns the entries matching f, preserving order.
func Apply(entries []audit.Entry, f Filter) []audit.Entry {
	out := []audit.Entry{}
	for _, e := range entries {
		if matchField(f.Action, string(e.Action)) &&
			matchField(f.Entity, e.Entity) &&
			matchField(f.User, e.User) &&
			(f.From.IsZero() || !e.Timestamp.Before(f.From)) &&
			(f.To.IsZero() || !e.Timestamp.After(f.To)) {
			out = append(out, e)
		}
	}
	return out
}

func matchField(want, got string) bool {
	return want == "" || want == "all" || want == got
}

// ParseFilter builds a Filter from query-string values.
// A date-only "to" covers that whole day.
func ParseFilter(action, entity, user, from, to string) (Filter, error) {
	f := Filter{
		Action: strings.TrimSpace(action),
		Entity: strings.TrimSpace(entity),
		User:   strings.TrimSpace(user),
	}
	if strings.TrimSpace(from) != "" {
		t, _, err := utils.ParseDate(from)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: from: %v", ErrInvalidRequest, err)
		}
		f.From = t
	}
	if strings.TrimSpace(to) != "" {
		t, dateOnly, err := utils.ParseDate(to)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: to: %v", ErrInvalidRequest, err)
		}
		if dateOnly {
			t = utils.EndOfDay(t)
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return Filter{}, fmt.Errorf("%w: to is before from", ErrInvalidRequest)
	}
	return f, nil
}

// Dashboard summarises bookings, money, and inbox state.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if s.repo == nil {
		return Dashboard{}, errors.New("reporting: repository not configured")
	}
	byStatus, err := s.repo.EventStatusCounts(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	pending, err := s.repo.PendingWebsiteBookings(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	archived, err := s.repo.ArchivedCount(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	income, expense, err := s.repo.FinancialTotals(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	unread, err := s.repo.UnreadInbox(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	out := Dashboard{
		EventsByStatus:         byStatus,
		PendingWebsiteBookings: pending,
		ArchivedEvents:         archived,
		TotalIncome:            income,
		TotalExpense:           expense,
		NetIncome:              income - expense,
		UnreadMessages:         unread,
		GeneratedAt:            s.clock().UTC(),
	}
	for _, n := range byStatus {
		out.TotalEvents += n
	}
	if len(entries) > recentActivityLimit {
		entries = entries[:recentActivityLimit]
	}
	out.RecentActivity = append([]audit.Entry{}, entries...)
	return out, nil
}
