package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRun_ConfigError は設定エラーでプロセスを終了せずエラーを返すことを検証します。
func TestRun_ConfigError(t *testing.T) {
	t.Setenv("ARTICLE_CACHE_TTL", "not-a-duration")

	err := run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
