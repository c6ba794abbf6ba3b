// Package storage はアバター画像などのオブジェクトストレージを提供します。
// バックエンドは MinIO（S3互換）と Google Cloud Storage を切り替えられます。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotConfigured はSTORAGE_BACKENDが空の場合に返されます。
	ErrNotConfigured = errors.New("object storage is not configured")

	// ErrObjectNotFound は指定したキーのオブジェクトが存在しない場合に返されます。
	ErrObjectNotFound = errors.New("object not found")
)

// Backend names accepted by STORAGE_BACKEND.
const (
	BackendMinio = "minio"
	BackendGCS   = "gcs"
)

// MinioConfig はMinIO接続設定です。
type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" envDefault:"media"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

// GCSConfig はGoogle Cloud Storage接続設定です。
type GCSConfig struct {
	Bucket          string `env:"GCS_BUCKET"`
	ProjectID       string `env:"GCS_PROJECT_ID"`
	CredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
}

// Config はオブジェクトストレージの設定です。
type Config struct {
	Backend string `env:"STORAGE_BACKEND"`

	// EnsureBucket が true の場合、起動時にバケットがなければ作成します。
	EnsureBucket bool `env:"STORAGE_ENSURE_BUCKET" envDefault:"false"`

	Minio MinioConfig
	GCS   GCSConfig
}

// LoadConfig は環境変数からストレージ設定を読み込みます。
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}

// ObjectStorage はバックエンド共通のオブジェクト操作です。
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Storage はバックエンドを包み、キーの検証とログ出力を行います。
type Storage struct {
	backend ObjectStorage
}

// NewStorage は指定したバックエンドのStorageを生成します。
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// Open は設定に従ってバックエンドを選択し、Storageを生成します。
// STORAGE_BACKEND が空の場合は ErrNotConfigured を返します。
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "":
		return nil, ErrNotConfigured
	case BackendMinio:
		backend, err = NewMinioClient(cfg.Minio)
	case BackendGCS:
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", cfg.Backend, err)
	}

	s := NewStorage(backend)
	if cfg.EnsureBucket {
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket %q: %w", s.Bucket(), err)
		}
	}
	log.Info().Str("backend", cfg.Backend).Str("bucket", s.Bucket()).Msg("object storage ready")
	return s, nil
}

// EnsureBucket はバケットが存在することを保証します。
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put はオブジェクトをアップロードします。
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.backend.Put(ctx, key, r, size, contentType); err != nil {
		return err
	}
	log.Debug().Str("key", key).Int64("size", size).Msg("object stored")
	return nil
}

// Get はオブジェクトを読み出します。存在しない場合は ErrObjectNotFound を返します。
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, ErrObjectNotFound
	}
	return s.backend.Get(ctx, key)
}

// Delete はオブジェクトを削除します。
func (s *Storage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	return s.backend.Delete(ctx, key)
}

// Bucket はバケット名を返します。
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}

// cleanKey は先頭のスラッシュを取り除き、親ディレクトリ参照を拒否します。
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", errors.New("object key is empty")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return "", fmt.Errorf("invalid object key %q", key)
		}
	}
	return key, nil
}
