package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventmis/internal/audit"
	"eventmis/internal/store"
	"eventmis/internal/store/storetest"

	"gorm.io/gorm"
)

const actor = "admin@eventmis.com"

type fixture struct {
	db    *gorm.DB
	svc   *Service
	audit *audit.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := storetest.Open(t, &Event{}, &ArchivedEvent{}, &audit.Entry{})
	auditSvc := audit.NewService(audit.NewGormRepo(db))
	return fixture{
		db:    db,
		svc:   NewService(db, store.NewTransactor(db), auditSvc),
		audit: auditSvc,
	}
}

func (f fixture) entries(t *testing.T) []audit.Entry {
	t.Helper()
	out, err := f.audit.List(context.Background())
	if err != nil {
		t.Fatalf("audit list: %v", err)
	}
	return out
}

func janeInput() CreateInput {
	return CreateInput{ClientName: "Jane", EventTitle: "Baby Shower", EventDate: "2025-06-01", Venue: "Garden Hall"}
}

func TestCreate_AppliesDefaults(t *testing.T) {
	f := newFixture(t)

	ev, err := f.svc.Create(context.Background(), actor, janeInput())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ev.ClientName != "Jane" || ev.EventTitle != "Baby Shower" || ev.Venue != "Garden Hall" {
		t.Fatalf("required fields not preserved: %+v", ev)
	}
	if ev.EventTheme != "Twinkle Star" || ev.PackageType != "Basic" {
		t.Fatalf("unexpected theme/package: %q/%q", ev.EventTheme, ev.PackageType)
	}
	if ev.PaymentStatus != PaymentPending || ev.EventStatus != StatusPending {
		t.Fatalf("unexpected statuses: %q/%q", ev.PaymentStatus, ev.EventStatus)
	}
	if ev.TotalAmount != 15000 || ev.NumberOfGuests != 50 {
		t.Fatalf("unexpected amount/guests: %v/%d", ev.TotalAmount, ev.NumberOfGuests)
	}
	if !ev.EventDate.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %v", ev.EventDate)
	}
	if ev.Gallery == nil || len(ev.Gallery) != 0 {
		t.Fatalf("expected empty gallery, got %v", ev.Gallery)
	}

	es := f.entries(t)
	if len(es) != 1 || es[0].Action != audit.ActionCreate || es[0].Entity != "Event" || es[0].EntityID != ev.ID {
		t.Fatalf("expected one CREATE Event entry, got %+v", es)
	}
	if es[0].User != actor {
		t.Fatalf("expected actor recorded, got %q", es[0].User)
	}
}

func TestCreate_RejectsMissingRequired(t *testing.T) {
	f := newFixture(t)
	in := janeInput()
	in.Venue = " "

	if _, err := f.svc.Create(context.Background(), actor, in); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if len(f.entries(t)) != 0 {
		t.Fatalf("expected no audit entry for rejected create")
	}
}

func TestCreate_ValidatesRanges(t *testing.T) {
	f := newFixture(t)
	zero := 0
	neg := -1.0

	in := janeInput()
	in.NumberOfGuests = &zero
	if _, err := f.svc.Create(context.Background(), actor, in); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected guests error, got %v", err)
	}
	in = janeInput()
	in.TotalAmount = &neg
	if _, err := f.svc.Create(context.Background(), actor, in); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected amount error, got %v", err)
	}
	in = janeInput()
	in.PaymentStatus = "Overdue"
	if _, err := f.svc.Create(context.Background(), actor, in); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected payment status error, got %v", err)
	}
}

func TestCreate_AcceptsFreeTextTheme(t *testing.T) {
	f := newFixture(t)
	in := janeInput()
	in.EventTheme = "Celebration"
	in.Gallery = []string{"a.png", " ", "b.png"}

	ev, err := f.svc.Create(context.Background(), actor, in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ev.EventTheme != "Celebration" || IsKnownTheme(ev.EventTheme) {
		t.Fatalf("expected custom theme kept, got %q", ev.EventTheme)
	}
	got, err := f.svc.Get(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Gallery) != 2 || got.Gallery[1] != "b.png" {
		t.Fatalf("gallery not round-tripped: %v", got.Gallery)
	}
}

func TestList_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, st := range []string{"Approved", "Pending", "Approved", "Cancelled"} {
		in := janeInput()
		in.EventStatus = st
		if _, err := f.svc.Create(ctx, actor, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, _ := f.svc.List(ctx, ListFilter{})
	approved, _ := f.svc.List(ctx, ListFilter{ApprovedOnly: true})
	cancelled, _ := f.svc.List(ctx, ListFilter{Status: "Cancelled"})
	if len(all) != 4 || len(approved) != 2 || len(cancelled) != 1 {
		t.Fatalf("unexpected counts all=%d approved=%d cancelled=%d", len(all), len(approved), len(cancelled))
	}
}

func TestUpdate_PartialKeepsAndClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := janeInput()
	in.ContactNumber = "0917"
	in.Remarks = "call first"
	ev, _ := f.svc.Create(ctx, actor, in)

	venue := "Rooftop"
	empty := ""
	got, err := f.svc.Update(ctx, actor, ev.ID, UpdateInput{Venue: &venue, ContactNumber: &empty})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Venue != "Rooftop" || got.ContactNumber != "" {
		t.Fatalf("expected venue set and contact cleared, got %+v", got.Booking)
	}
	if got.ClientName != "Jane" || got.Remarks != "call first" {
		t.Fatalf("expected omitted fields kept, got %+v", got.Booking)
	}

	es := f.entries(t)
	if len(es) != 2 || es[0].Action != audit.ActionUpdate {
		t.Fatalf("expected UPDATE entry on top, got %+v", es)
	}
}

func TestUpdate_RejectsClearingRequired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, _ := f.svc.Create(ctx, actor, janeInput())

	empty := ""
	if _, err := f.svc.Update(ctx, actor, ev.ID, UpdateInput{ClientName: &empty}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	got, _ := f.svc.Get(ctx, ev.ID)
	if got.ClientName != "Jane" {
		t.Fatalf("expected unchanged record")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)
	venue := "x"
	if _, err := f.svc.Update(context.Background(), actor, "missing", UpdateInput{Venue: &venue}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestArchiveRestore_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := janeInput()
	in.EventStatus = "Approved"
	ev, _ := f.svc.Create(ctx, actor, in)

	arch, err := f.svc.Archive(ctx, actor, ev.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if arch.OriginalEventID != ev.ID || arch.ArchivedAt.IsZero() {
		t.Fatalf("unexpected archived row: %+v", arch)
	}
	if _, err := f.svc.Get(ctx, ev.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected active row gone, got %v", err)
	}

	restored, err := f.svc.Restore(ctx, actor, arch.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.ID == ev.ID {
		t.Fatalf("expected a new id")
	}
	if restored.EventTitle != ev.EventTitle || restored.Venue != ev.Venue || restored.ClientName != ev.ClientName {
		t.Fatalf("business fields changed: %+v vs %+v", restored.Booking, ev.Booking)
	}
	if restored.EventStatus != StatusPending {
		t.Fatalf("expected status reset to Pending, got %q", restored.EventStatus)
	}
	if !restored.CreatedAt.Equal(ev.CreatedAt) {
		t.Fatalf("expected original createdAt kept")
	}
	archived, _ := f.svc.ListArchived(ctx)
	if len(archived) != 0 {
		t.Fatalf("expected archived row removed, got %d", len(archived))
	}

	es := f.entries(t)
	if len(es) != 3 {
		t.Fatalf("expected 3 audit entries, got %d", len(es))
	}
	wantIDs := map[audit.Action]string{
		audit.ActionCreate:  ev.ID,
		audit.ActionArchive: ev.ID,
		audit.ActionRestore: restored.ID,
	}
	for _, e := range es {
		want, ok := wantIDs[e.Action]
		if !ok {
			t.Fatalf("unexpected action %q", e.Action)
		}
		if e.Entity != audit.EntityEvent || e.EntityID != want {
			t.Fatalf("%s entry = %s/%s, want %s/%s", e.Action, e.Entity, e.EntityID, audit.EntityEvent, want)
		}
		delete(wantIDs, e.Action)
	}
}

func TestArchive_NotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Archive(context.Background(), actor, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.Restore(context.Background(), actor, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// storetest runs on one connection, so these attempts serialize; the point is
// that every attempt after the first sees NotFound and leaves no trace.
func TestArchive_RepeatedAttemptsProduceOneCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, _ := f.svc.Create(ctx, actor, janeInput())

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Archive(ctx, actor, ev.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, ErrNotFound):
			t.Fatalf("unexpected err: %v", err)
		}
	}
	archived, _ := f.svc.ListArchived(ctx)
	if ok != 1 || len(archived) != 1 {
		t.Fatalf("expected exactly one archive, ok=%d archived=%d", ok, len(archived))
	}
	archives := 0
	for _, e := range f.entries(t) {
		if e.Action == audit.ActionArchive {
			archives++
		}
	}
	if archives != 1 {
		t.Fatalf("expected one ARCHIVE entry, got %d", archives)
	}
}

func TestUpdate_DoesNotBringBackArchivedEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, _ := f.svc.Create(ctx, actor, janeInput())

	// An archive commits after Update has read the row but before it writes.
	var once sync.Once
	err := f.db.Callback().Update().Before("gorm:update").Register("test:archive_mid_update", func(tx *gorm.DB) {
		once.Do(func() {
			if err := tx.Session(&gorm.Session{NewDB: true}).Exec("DELETE FROM events WHERE id = ?", ev.ID).Error; err != nil {
				t.Errorf("delete: %v", err)
			}
		})
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	venue := "Rooftop"
	if _, err := f.svc.Update(ctx, actor, ev.ID, UpdateInput{Venue: &venue}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// The simulated archive shares the rolled-back transaction here, so the
	// row is back; it must carry the original venue, not the update.
	got, err := f.svc.Get(ctx, ev.ID)
	if err != nil || got.Venue != ev.Venue {
		t.Fatalf("expected untouched row, got %+v err=%v", got.Booking, err)
	}
	for _, e := range f.entries(t) {
		if e.Action == audit.ActionUpdate {
			t.Fatalf("failed update left an audit entry")
		}
	}
}

func TestPermanentDelete_AuditsFullRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, _ := f.svc.Create(ctx, actor, janeInput())
	arch, _ := f.svc.Archive(ctx, actor, ev.ID)

	if _, err := f.svc.PermanentDelete(ctx, actor, arch.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.PermanentDelete(ctx, actor, arch.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	top := f.entries(t)[0]
	if top.Action != audit.ActionDelete || top.Entity != "ArchivedEvent" || top.EntityID != arch.ID {
		t.Fatalf("unexpected entry: %+v", top)
	}
	if len(top.Changes) < 10 {
		t.Fatalf("expected full record in changes, got %s", top.Changes)
	}
}

type recordingObserver struct {
	mu  sync.Mutex
	got []string
}

func (o *recordingObserver) LifecycleOutcome(op, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, op+":"+outcome)
}

func TestArchive_ReportsOutcomes(t *testing.T) {
	f := newFixture(t)
	obs := &recordingObserver{}
	f.svc.WithObserver(obs)
	ctx := context.Background()
	ev, _ := f.svc.Create(ctx, actor, janeInput())

	_, _ = f.svc.Archive(ctx, actor, ev.ID)
	_, _ = f.svc.Archive(ctx, actor, ev.ID)

	if len(obs.got) != 2 || obs.got[0] != "archive:ok" || obs.got[1] != "archive:not_found" {
		t.Fatalf("unexpected outcomes: %v", obs.got)
	}
}

func TestIsWebsiteBooking(t *testing.T) {
	b := Booking{Remarks: "Budget: x\n" + WebsiteMarker}
	if !b.IsWebsiteBooking() {
		t.Fatalf("expected website booking")
	}
	if (Booking{Remarks: "walk-in"}).IsWebsiteBooking() {
		t.Fatalf("expected admin booking")
	}
}
