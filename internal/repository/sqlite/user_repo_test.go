package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/userhub-io/userhub/internal/domain"
	"github.com/userhub-io/userhub/internal/repository"
)

// newTestRepo opens a migrated in-memory database.
func newTestRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	ctx := context.Background()
	db, err := NewDB(ctx, DefaultConfig(":memory:"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))

	return NewUserRepository(db)
}

func createTestUser(t *testing.T, repo repository.UserRepository, email string) *domain.User {
	t.Helper()
	user := domain.NewUser(email, "hashed-password")
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice@example.com")
	require.NotZero(t, user.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", byID.Email)
	require.Equal(t, "hashed-password", byID.PasswordHash)
	require.True(t, byID.IsActive)
	require.WithinDuration(t, user.CreatedAt, byID.CreatedAt, time.Second)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)
}

func TestGetNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 42)
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	createTestUser(t, repo, "alice@example.com")

	dup := domain.NewUser("alice@example.com", "other-hash")
	err := repo.Create(ctx, dup)
	require.ErrorIs(t, err, repository.ErrDuplicate)

	// Exactly one row must exist afterward.
	result, err := repo.List(ctx, repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, result.Total)
	require.Len(t, result.Items, 1)
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice@example.com")

	user.Email = "alice2@example.com"
	user.IsActive = false
	user.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "alice2@example.com", got.Email)
	require.False(t, got.IsActive)
}

func TestUpdateDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := createTestUser(t, repo, "a@x.com")
	createTestUser(t, repo, "b@x.com")

	a.Email = "b@x.com"
	a.UpdatedAt = time.Now().UTC()
	err := repo.Update(ctx, a)
	require.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", got.Email)
}

func TestUpdateNotFound(t *testing.T) {
	repo := newTestRepo(t)

	ghost := domain.NewUser("ghost@example.com", "hash")
	ghost.ID = 999
	err := repo.Update(context.Background(), ghost)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice@example.com")
	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err := repo.GetByID(ctx, user.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.Delete(ctx, user.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		createTestUser(t, repo, fmt.Sprintf("u%d@x.com", i))
	}

	page, err := repo.List(ctx, repository.ListOptions{Offset: 0, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.EqualValues(t, 5, page.Total)
	require.Less(t, page.Items[0].ID, page.Items[1].ID)

	last, err := repo.List(ctx, repository.ListOptions{Offset: 4, Limit: 2})
	require.NoError(t, err)
	require.Len(t, last.Items, 1)

	empty, err := repo.List(ctx, repository.ListOptions{Offset: 10, Limit: 2})
	require.NoError(t, err)
	require.Empty(t, empty.Items)
	require.EqualValues(t, 5, empty.Total)
}

func TestExistsByEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	createTestUser(t, repo, "alice@example.com")

	exists, err := repo.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestIsUniqueViolationHelper(t *testing.T) {
	require.False(t, isUniqueViolation(nil))
	require.False(t, isUniqueViolation(errors.New("some other error")))
	require.True(t, isUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.email")))
}
