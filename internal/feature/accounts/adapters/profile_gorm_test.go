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

func TestProfileGorm(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	u := seedUser(t, db, "alice", "")
	ctx := context.Background()

	_, err := repo.FindByUserID(ctx, u.ID)
	assert.ErrorIs(t, err, usecase.ErrProfileNotFound)

	p := &entity.Profile{UserID: u.ID}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)

	assert.Error(t, repo.Create(ctx, &entity.Profile{UserID: u.ID}), "one profile per user")

	birth := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	p.BirthDate = &birth
	p.Avatar = "user_pics/1/a.png"
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BirthDate)
	assert.Equal(t, "1990-04-12", got.BirthDate.Format("2006-01-02"))
	assert.Equal(t, "user_pics/1/a.png", got.Avatar)

	got.BirthDate = nil
	got.Avatar = ""
	require.NoError(t, repo.Update(ctx, got))
	cleared, err := repo.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.BirthDate)
	assert.Empty(t, cleared.Avatar)
}
