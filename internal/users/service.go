package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventmis/internal/audit"
	"eventmis/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("account is not active")
)

type Auditor interface {
	Record(ctx context.Context, action audit.Action, entity, entityID, details, actor string, changes any) error
}

type Service struct {
	db       *gorm.DB
	tx       *store.Transactor
	audit    Auditor
	validate *validator.Validate
	cost     int
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *gorm.DB, tx *store.Transactor, auditor Auditor) *Service {
	return &Service{
		db:       db,
		tx:       tx,
		audit:    auditor,
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
		clock:    time.Now,
	}
}

type CreateInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// UpdateInput is a partial update. The password is rehashed only when a
// non-empty value is supplied.
type UpdateInput struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
}

type ProfileInput struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Image    *string `json:"image"`
}

func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" {
		return User{}, fmt.Errorf("%w: missing required fields: name, username, email", ErrInvalidArgument)
	}
	now := s.clock().UTC()
	u := User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Username:  strings.TrimSpace(in.Username),
		Email:     normalizeEmail(in.Email),
		Role:      Role(orDefault(in.Role, string(RoleStaff))),
		Status:    Status(orDefault(in.Status, string(StatusActive))),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.check(u); err != nil {
		return User{}, err
	}
	if in.Password != "" {
		h, err := s.hash(in.Password)
		if err != nil {
			return User{}, err
		}
		u.PasswordHash = h
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailFree(ctx, u.Email, ""); err != nil {
			return err
		}
		if err := store.Conn(ctx, s.db).Create(&u).Error; err != nil {
			return translate(err)
		}
		return s.audit.Record(ctx, audit.ActionCreate, audit.EntityUser, u.ID,
			fmt.Sprintf("Created user: %s (%s)", u.Name, u.Role), actor, u)
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	out := []User{}
	if err := store.Conn(ctx, s.db).Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.findBy(ctx, "id = ?", id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.findBy(ctx, "email = ?", normalizeEmail(email))
}

func (s *Service) Update(ctx context.Context, actor, id string, in UpdateInput) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	var out User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		before, err := s.findBy(ctx, "id = ?", id)
		if err != nil {
			return err
		}
		after := before
		for _, f := range []struct {
			name string
			dst  *string
			v    *string
		}{
			{"name", &after.Name, in.Name},
			{"username", &after.Username, in.Username},
		} {
			if f.v == nil {
				continue
			}
			if strings.TrimSpace(*f.v) == "" {
				return fmt.Errorf("%w: %s cannot be empty", ErrInvalidArgument, f.name)
			}
			*f.dst = strings.TrimSpace(*f.v)
		}
		if in.Email != nil {
			after.Email = normalizeEmail(*in.Email)
		}
		if in.Role != nil {
			after.Role = Role(strings.TrimSpace(*in.Role))
		}
		if in.Status != nil {
			after.Status = Status(strings.TrimSpace(*in.Status))
		}
		if err := s.check(after); err != nil {
			return err
		}
		if after.Email != before.Email {
			if err := s.ensureEmailFree(ctx, after.Email, after.ID); err != nil {
				return err
			}
		}
		if before.Role == RoleAdmin && before.Active() && (after.Role != RoleAdmin || !after.Active()) {
			if err := s.ensureAnotherAdmin(ctx, before.ID); err != nil {
				return err
			}
		}
		if in.Password != nil && *in.Password != "" {
			h, err := s.hash(*in.Password)
			if err != nil {
				return err
			}
			after.PasswordHash = h
		}
		after.UpdatedAt = s.clock().UTC()

		if err := store.UpdateAll(ctx, s.db, &after); err != nil {
			return translate(err)
		}
		out = after
		return s.audit.Record(ctx, audit.ActionUpdate, audit.EntityUser, after.ID,
			"Updated user: "+after.Name, actor, audit.BeforeAfter{Before: before, After: after})
	})
	if err != nil {
		return User{}, err
	}
	return out, nil
}

// Delete removes a user. The last active admin cannot be removed.
func (s *Service) Delete(ctx context.Context, actor, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.findBy(ctx, "id = ?", id)
		if err != nil {
			return err
		}
		if existing.Role == RoleAdmin && existing.Active() {
			if err := s.ensureAnotherAdmin(ctx, existing.ID); err != nil {
				return err
			}
		}
		res := store.Conn(ctx, s.db).Where("id = ?", id).Delete(&User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return s.audit.Record(ctx, audit.ActionDelete, audit.EntityUser, id,
			"Deleted user: "+existing.Name, actor, existing)
	})
}

// Authenticate checks credentials for an active account.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return User{}, fmt.Errorf("%w: email and password are required", ErrInvalidArgument)
	}
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	if !u.Active() {
		return User{}, ErrInactive
	}
	return u, nil
}

// UpdateProfile lets a signed-in user change their own name, password or image.
func (s *Service) UpdateProfile(ctx context.Context, email string, in ProfileInput) (User, error) {
	var out User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		before, err := s.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		after := before
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return fmt.Errorf("%w: name cannot be empty", ErrInvalidArgument)
			}
			after.Name = strings.TrimSpace(*in.Name)
		}
		if in.Image != nil {
			after.Image = *in.Image
		}
		if in.Password != nil && *in.Password != "" {
			h, err := s.hash(*in.Password)
			if err != nil {
				return err
			}
			after.PasswordHash = h
		}
		after.UpdatedAt = s.clock().UTC()
		if err := store.UpdateAll(ctx, s.db, &after); err != nil {
			return translate(err)
		}
		out = after
		return s.audit.Record(ctx, audit.ActionUpdate, audit.EntityAdminProfile, after.ID,
			"Updated admin profile: "+after.Name, after.Email,
			audit.BeforeAfter{Before: profileView(before), After: profileView(after)})
	})
	if err != nil {
		return User{}, err
	}
	return out, nil
}

// EnsureAdmin seeds the first administrator when no users exist.
// It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	created := false
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var n int64
		if err := store.Conn(ctx, s.db).Model(&User{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		local := normalizeEmail(email)
		if i := strings.IndexByte(local, '@'); i > 0 {
			local = local[:i]
		}
		_, err := s.Create(ctx, email, CreateInput{
			Name:     "Administrator",
			Username: local,
			Email:    email,
			Password: password,
			Role:     string(RoleAdmin),
		})
		created = err == nil
		return err
	})
	return created, err
}

func (s *Service) findBy(ctx context.Context, cond string, arg string) (User, error) {
	var u User
	if err := store.Conn(ctx, s.db).Where(cond, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	q := store.Conn(ctx, s.db).Model(&User{}).Where("email = ?", email)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: email %s is already in use", ErrConflict, email)
	}
	return nil
}

func (s *Service) ensureAnotherAdmin(ctx context.Context, exceptID string) error {
	var n int64
	err := store.Conn(ctx, s.db).Model(&User{}).
		Where("role = ? AND status = ? AND id <> ?", RoleAdmin, StatusActive, exceptID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: at least one active admin must remain", ErrConflict)
	}
	return nil
}

func (s *Service) check(u User) error {
	if err := s.validate.Var(u.Email, "required,email"); err != nil {
		return fmt.Errorf("%w: email %q is not valid", ErrInvalidArgument, u.Email)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: role must be Admin or Staff", ErrInvalidArgument)
	}
	if !u.Status.Valid() {
		return fmt.Errorf("%w: status must be Active or Inactive", ErrInvalidArgument)
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return string(b), nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: email is already in use", ErrConflict)
	case errors.Is(err, store.ErrNoRows):
		return ErrNotFound
	}
	return err
}

func profileView(u User) map[string]string {
	return map[string]string{"name": u.Name, "email": u.Email}
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
