package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"blog_backend/internal/feature/accounts/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database with every accounts table.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// :memory: は接続ごとに別のDBになるため1接続に固定する
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entity.User{}, &entity.Profile{}, &entity.AuthToken{}, &SessionModel{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

// seedUser creates a user directly in the database.
func seedUser(t *testing.T, db *gorm.DB, username, email string) *entity.User {
	t.Helper()
	u := &entity.User{Username: username, Email: email, Password: "hashed_password"}
	require.NoError(t, db.Create(u).Error, "failed to seed user")
	return u
}
