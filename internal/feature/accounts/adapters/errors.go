// Package adapters はaccountsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
const pgUniqueViolation = "23505"

// isDuplicateKey は一意制約違反のエラーかどうかを判定します。
// TranslateError が有効なら gorm.ErrDuplicatedKey、無効ならドライバのエラーで判定します。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	// SQLite (テスト用)
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
