package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/example/englishschool/internal/db"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const dir = "migrations"

// Migrator applies the embedded goose migrations over the shared pool.
type Migrator struct {
	sqlDB *sql.DB
}

func New(d *db.DB, logger *zap.Logger) (*Migrator, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetLogger(gooseLogger{logger.Sugar()})

	// goose works on *sql.DB; wrap the pool rather than opening a second one
	return &Migrator{sqlDB: stdlib.OpenDBFromPool(d.Pool())}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	if err := goose.UpContext(ctx, m.sqlDB, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (m *Migrator) Status(ctx context.Context) error {
	return goose.StatusContext(ctx, m.sqlDB, dir)
}

func (m *Migrator) Version(ctx context.Context) (int64, error) {
	v, err := goose.GetDBVersionContext(ctx, m.sqlDB)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// Close releases the *sql.DB wrapper; the pool itself stays open.
func (m *Migrator) Close() error {
	return m.sqlDB.Close()
}

// Up is the one-shot form used by commands that only need the schema current.
func Up(ctx context.Context, d *db.DB, logger *zap.Logger) error {
	m, err := New(d, logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up(ctx)
}

type gooseLogger struct{ s *zap.SugaredLogger }

func (l gooseLogger) Printf(format string, v ...any) { l.s.Infof(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...any) { l.s.Fatalf(format, v...) }
