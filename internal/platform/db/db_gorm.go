package db

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	signaladapters "signal_backend/internal/feature/signals/adapters"
)

// RetryInterval は接続リトライの間隔です。
const RetryInterval = 3 * time.Second

// Config はデータベース接続設定を保持します。
type Config struct {
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string
}

// Opener は DSN から gorm.DB を開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}
	return Config{
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		SSLMode:      sslmode,
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
}

// BuildDSN は Postgres の key=value 形式の DSN を生成します。
// InstanceName が設定されている場合は Cloud SQL の Unix ソケットを優先します。
func BuildDSN(cfg Config) string {
	parts := []string{
		"user=" + cfg.User,
		"password=" + cfg.Password,
		"dbname=" + cfg.Name,
	}
	if cfg.InstanceName != "" {
		parts = append(parts, "host=/cloudsql/"+cfg.InstanceName)
	} else {
		parts = append(parts, "host="+cfg.Host, "port="+cfg.Port)
		if cfg.SSLMode != "" {
			parts = append(parts, "sslmode="+cfg.SSLMode)
		}
	}
	return strings.Join(parts, " ")
}

// ConnectWithRetry は timeout まで RetryInterval 間隔で接続を試みます。
// 次のリトライが期限を超える場合は待たずにエラーを返します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(RetryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", RetryInterval)
		time.Sleep(RetryInterval)
	}
}

// openPostgres は pgx の stdlib ドライバ経由で gorm を開きます。
func openPostgres(dsn string) (*gorm.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	sqlDB := stdlib.OpenDB(*cfg)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
}

// OpenDB は環境変数の設定で Postgres に接続し、必要ならマイグレーションを実行します。
func OpenDB() (*gorm.DB, error) {
	db, err := ConnectWithRetry(BuildDSN(LoadConfigFromEnv()), 60*time.Second, openPostgres)
	if err != nil {
		return nil, err
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate はシグナル関連のテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&signaladapters.SignalModel{},
		&signaladapters.UserPreferenceModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
