package users

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"eventmis/internal/audit"
	"eventmis/internal/store"
	"eventmis/internal/store/storetest"

	"golang.org/x/crypto/bcrypt"
)

const actor = "admin@eventmis.com"

func newService(t *testing.T) (*Service, *audit.Service) {
	t.Helper()
	db := storetest.Open(t, &User{}, &audit.Entry{})
	a := audit.NewService(audit.NewGormRepo(db))
	svc := NewService(db, store.NewTransactor(db), a)
	svc.cost = bcrypt.MinCost
	return svc, a
}

func TestCreate_DefaultsAndHashes(t *testing.T) {
	svc, a := newService(t)
	u, err := svc.Create(context.Background(), actor, CreateInput{Name: "Lia", Username: "lia", Email: " Lia@Example.com ", Password: "s3cret"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Role != RoleStaff || u.Status != StatusActive || u.Email != "lia@example.com" {
		t.Fatalf("unexpected defaults: %+v", u)
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret" {
		t.Fatalf("expected hashed password")
	}

	b, _ := json.Marshal(u)
	if strings.Contains(string(b), "password") || strings.Contains(string(b), u.PasswordHash) {
		t.Fatalf("password leaked into JSON: %s", b)
	}
	es, _ := a.List(context.Background())
	if len(es) != 1 || es[0].Entity != "User" || es[0].Details != "Created user: Lia (Staff)" {
		t.Fatalf("unexpected audit: %+v", es)
	}
	if strings.Contains(string(es[0].Changes), u.PasswordHash) {
		t.Fatalf("password hash leaked into audit changes")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	bad := []CreateInput{
		{Username: "a", Email: "a@b.co"},
		{Name: "A", Username: "a", Email: "not-an-email"},
		{Name: "A", Username: "a", Email: "a@b.co", Role: "Owner"},
		{Name: "A", Username: "a", Email: "a@b.co", Status: "Suspended"},
	}
	for i, in := range bad {
		if _, err := svc.Create(ctx, actor, in); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}
}

func TestCreate_DuplicateEmailConflicts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, actor, CreateInput{Name: "A", Username: "a", Email: "a@b.co"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, actor, CreateInput{Name: "B", Username: "b", Email: "A@B.CO"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdate_PasswordOnlyRehashedWhenProvided(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	u, _ := svc.Create(ctx, actor, CreateInput{Name: "A", Username: "a", Email: "a@b.co", Password: "first"})

	name := "Alicia"
	empty := ""
	got, err := svc.Update(ctx, actor, u.ID, UpdateInput{Name: &name, Password: &empty})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.PasswordHash != u.PasswordHash || got.Name != "Alicia" {
		t.Fatalf("expected hash unchanged and name updated")
	}

	pw := "second"
	got, _ = svc.Update(ctx, actor, u.ID, UpdateInput{Password: &pw})
	if got.PasswordHash == u.PasswordHash {
		t.Fatalf("expected new hash")
	}
	if _, err := svc.Authenticate(ctx, "a@b.co", "second"); err != nil {
		t.Fatalf("expected new password to work: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, _ = svc.Create(ctx, actor, CreateInput{Name: "A", Username: "a", Email: "a@b.co", Password: "pw"})
	_, _ = svc.Create(ctx, actor, CreateInput{Name: "I", Username: "i", Email: "i@b.co", Password: "pw", Status: "Inactive"})

	if _, err := svc.Authenticate(ctx, "A@b.co", "pw"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "a@b.co", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost@b.co", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "i@b.co", "pw"); !errors.Is(err, ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
}

func TestLastAdminIsProtected(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	created, err := svc.EnsureAdmin(ctx, "root@eventmis.com", "pw")
	if err != nil || !created {
		t.Fatalf("ensure admin: %v %v", created, err)
	}
	admin, _ := svc.GetByEmail(ctx, "root@eventmis.com")

	if err := svc.Delete(ctx, actor, admin.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict deleting last admin, got %v", err)
	}
	staff := "Staff"
	if _, err := svc.Update(ctx, actor, admin.ID, UpdateInput{Role: &staff}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict demoting last admin, got %v", err)
	}

	_, _ = svc.Create(ctx, actor, CreateInput{Name: "B", Username: "b", Email: "b@b.co", Role: "Admin"})
	if err := svc.Delete(ctx, actor, admin.ID); err != nil {
		t.Fatalf("expected delete allowed with another admin, got %v", err)
	}
}

func TestEnsureAdmin_OnlySeedsEmptyTable(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if created, _ := svc.EnsureAdmin(ctx, "root@eventmis.com", "pw"); !created {
		t.Fatalf("expected seed on empty table")
	}
	if created, _ := svc.EnsureAdmin(ctx, "other@eventmis.com", "pw"); created {
		t.Fatalf("expected no second seed")
	}
	u, err := svc.Authenticate(ctx, "root@eventmis.com", "pw")
	if err != nil || u.Role != RoleAdmin || u.Username != "root" {
		t.Fatalf("unexpected seeded admin: %+v %v", u, err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, a := newService(t)
	ctx := context.Background()
	_, _ = svc.EnsureAdmin(ctx, "root@eventmis.com", "pw")

	name := "Event Boss"
	got, err := svc.UpdateProfile(ctx, "root@eventmis.com", ProfileInput{Name: &name})
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got.Name != "Event Boss" {
		t.Fatalf("unexpected name %q", got.Name)
	}
	es, _ := a.List(ctx)
	if es[0].Entity != "AdminProfile" || es[0].User != "root@eventmis.com" {
		t.Fatalf("unexpected audit entry: %+v", es[0])
	}
	if _, err := svc.UpdateProfile(ctx, "ghost@eventmis.com", ProfileInput{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
