package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/usecase"
)

func TestNewUserRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		user := &entity.User{Username: "alice", Email: "alice@example.com", Password: "hashed_password"}
		err := repo.Create(context.Background(), user)

		assert.NoError(t, err, "failed to create user")
		assert.NotZero(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
		assert.False(t, user.IsActive, "users are inactive unless set")
	})

	t.Run("duplicate username", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRepository(db)
		seedUser(t, db, "alice", "")

		err := repo.Create(context.Background(), &entity.User{Username: "alice", Password: "x"})

		assert.ErrorIs(t, err, usecase.ErrUsernameTaken)
	})

	t.Run("duplicate email is allowed", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRepository(db)
		seedUser(t, db, "alice", "shared@example.com")

		err := repo.Create(context.Background(), &entity.User{Username: "bob", Email: "shared@example.com", Password: "x"})

		assert.NoError(t, err)
	})
}

func TestUserGorm_Find(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	first := seedUser(t, db, "alice", "shared@example.com")
	seedUser(t, db, "bob", "shared@example.com")
	ctx := context.Background()

	tests := []struct {
		name    string
		find    func() (*entity.User, error)
		wantID  uint
		wantErr error
	}{
		{"by id", func() (*entity.User, error) { return repo.FindByID(ctx, first.ID) }, first.ID, nil},
		{"by id not found", func() (*entity.User, error) { return repo.FindByID(ctx, 999) }, 0, usecase.ErrUserNotFound},
		{"by username", func() (*entity.User, error) { return repo.FindByUsername(ctx, "alice") }, first.ID, nil},
		{"by username not found", func() (*entity.User, error) { return repo.FindByUsername(ctx, "carol") }, 0, usecase.ErrUserNotFound},
		{"first by email", func() (*entity.User, error) { return repo.FindFirstByEmail(ctx, "shared@example.com") }, first.ID, nil},
		{"by email not found", func() (*entity.User, error) { return repo.FindFirstByEmail(ctx, "none@example.com") }, 0, usecase.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := tt.find()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, u.ID)
		})
	}
}

func TestUserGorm_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	u := seedUser(t, db, "alice", "")
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	u.IsActive = true
	u.FirstName = "Alice"
	u.LastLogin = &now
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, "Alice", got.FirstName)
	require.NotNil(t, got.LastLogin)
	assert.True(t, now.Equal(*got.LastLogin))

	// false への更新もゼロ値として保存される
	got.IsActive = false
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive)

	assert.ErrorIs(t, repo.Update(ctx, &entity.User{}), usecase.ErrUserNotFound)
}
