package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userhub-io/userhub/internal/domain"
	"github.com/userhub-io/userhub/internal/repository"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users     map[int64]*domain.User
	nextID    int64
	createErr error
	getErr    error
	updateErr error
	deleteErr error
	listErr   error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, exists := m.users[id]; exists {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, exists := m.users[user.ID]; !exists {
		return repository.ErrNotFound
	}
	for _, u := range m.users {
		if u.ID != user.ID && u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.users[id]; !exists {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	all := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := opts.Offset
	if start > len(all) {
		start = len(all)
	}
	end := start + opts.Limit
	if end > len(all) {
		end = len(all)
	}

	return &repository.ListResult[domain.User]{
		Items:  all[start:end],
		Total:  int64(len(all)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

func newTestService(repo repository.UserRepository) *UserService {
	return NewUserService(repo, zerolog.Nop())
}

func seedUser(t *testing.T, svc *UserService, email, password string) *domain.User {
	t.Helper()
	user, err := svc.Create(context.Background(), CreateUserInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("seeding user %s failed: %v", email, err)
	}
	return user
}

func TestCreateHashesPassword(t *testing.T) {
	svc := newTestService(NewMockUserRepository())

	user, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "alice@example.com",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if user.ID == 0 {
		t.Error("expected generated ID")
	}
	if !user.IsActive {
		t.Error("new users should be active")
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret" {
		t.Errorf("password must be stored hashed, got %q", user.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("stored hash does not verify the password: %v", err)
	}

	got, err := svc.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.Email != user.Email {
		t.Errorf("unexpected email: %s", got.Email)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := NewMockUserRepository()
	svc := newTestService(repo)
	seedUser(t, svc, "alice@example.com", "first")

	_, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "alice@example.com",
		Password: "second",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Errorf("expected exactly one stored user, got %d", len(repo.users))
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(NewMockUserRepository())

	_, err := svc.Create(context.Background(), CreateUserInput{Email: "not-an-email", Password: "x"})
	if !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateUserInput{Email: "ok@example.com", Password: ""})
	if !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestUpdateEmptyInputTouchesOnlyUpdatedAt(t *testing.T) {
	svc := newTestService(NewMockUserRepository())
	created := seedUser(t, svc, "alice@example.com", "s3cret")

	time.Sleep(5 * time.Millisecond)

	updated, err := svc.Update(context.Background(), created.ID, UpdateUserInput{})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Email != created.Email {
		t.Errorf("email changed: %s", updated.Email)
	}
	if updated.PasswordHash != created.PasswordHash {
		t.Error("password hash changed on empty update")
	}
	if updated.IsActive != created.IsActive {
		t.Error("is_active changed on empty update")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("created_at changed on update")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("updated_at not refreshed: %v <= %v", updated.UpdatedAt, created.UpdatedAt)
	}
}

func TestUpdateEmailToExistingFails(t *testing.T) {
	svc := newTestService(NewMockUserRepository())
	a := seedUser(t, svc, "a@x.com", "pwa")
	seedUser(t, svc, "b@x.com", "pwb")

	newEmail := "b@x.com"
	_, err := svc.Update(context.Background(), a.ID, UpdateUserInput{Email: &newEmail})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := svc.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Email != "a@x.com" {
		t.Errorf("email should be unchanged, got %s", got.Email)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	svc := newTestService(NewMockUserRepository())
	created := seedUser(t, svc, "alice@example.com", "old-pw")

	inactive := false
	newPassword := "new-pw"
	updated, err := svc.Update(context.Background(), created.ID, UpdateUserInput{
		Password: &newPassword,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Email != created.Email {
		t.Errorf("email should be unchanged, got %s", updated.Email)
	}
	if updated.IsActive {
		t.Error("expected user to be deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new-pw")); err != nil {
		t.Errorf("new password does not verify: %v", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(NewMockUserRepository())

	_, err := svc.Update(context.Background(), 99, UpdateUserInput{})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteNotFoundLeavesStoreIntact(t *testing.T) {
	repo := NewMockUserRepository()
	svc := newTestService(repo)
	seedUser(t, svc, "alice@example.com", "s3cret")

	err := svc.Delete(context.Background(), 99)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Errorf("store should be unaffected, got %d users", len(repo.users))
	}
}

func TestDelete(t *testing.T) {
	svc := newTestService(NewMockUserRepository())
	created := seedUser(t, svc, "alice@example.com", "s3cret")

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := svc.GetByID(context.Background(), created.ID)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(NewMockUserRepository())
	created := seedUser(t, svc, "alice@example.com", "s3cret")

	user, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("unexpected user returned: %d", user.ID)
	}

	_, err = svc.Authenticate(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "s3cret")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthenticateInactive(t *testing.T) {
	svc := newTestService(NewMockUserRepository())
	created := seedUser(t, svc, "alice@example.com", "s3cret")

	inactive := false
	if _, err := svc.Update(context.Background(), created.ID, UpdateUserInput{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivating user failed: %v", err)
	}

	_, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cret")
	if !errors.Is(err, domain.ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestListPaginationAndClamping(t *testing.T) {
	svc := newTestService(NewMockUserRepository())
	emails := []string{"u1@x.com", "u2@x.com", "u3@x.com", "u4@x.com", "u5@x.com"}
	for _, e := range emails {
		seedUser(t, svc, e, "pw")
	}

	out, err := svc.List(context.Background(), ListUsersInput{Skip: 0, Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(out.Users))
	}
	if out.Users[0].ID >= out.Users[1].ID {
		t.Error("users not ordered by ascending ID")
	}
	if out.TotalCount != 5 {
		t.Errorf("expected total 5, got %d", out.TotalCount)
	}

	out, err = svc.List(context.Background(), ListUsersInput{Skip: 4, Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Users) != 1 {
		t.Errorf("expected 1 user at skip=4, got %d", len(out.Users))
	}

	out, err = svc.List(context.Background(), ListUsersInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Limit != defaultListLimit {
		t.Errorf("expected default limit %d, got %d", defaultListLimit, out.Limit)
	}

	out, err = svc.List(context.Background(), ListUsersInput{Limit: 10000})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Limit != maxListLimit {
		t.Errorf("expected limit clamped to %d, got %d", maxListLimit, out.Limit)
	}
}
