package connectors

import (
	"context"
	"log/slog"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"pr_compliance_service/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Postgres lazily opens a sqlx client over the pgx stdlib driver.
type Postgres struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration

	once   sync.Once
	client *sqlx.DB
}

func (p *Postgres) Client(ctx context.Context) *sqlx.DB {
	p.once.Do(func() {
		db := lo.Must(sqlx.Open("pgx", p.DSN))
		db.SetMaxIdleConns(p.MaxIdleConns)
		db.SetMaxOpenConns(p.MaxOpenConns)
		db.SetConnMaxLifetime(p.ConnMaxLifetime)

		if err := db.PingContext(ctx); err != nil {
			logger(ctx).Error("postgres ping failed", slog.Any("error", err))
		}

		p.client = db
	})

	return p.client
}

func (p *Postgres) Close(ctx context.Context) {
	if p.client == nil {
		return
	}

	if err := p.client.Close(); err != nil {
		logger(ctx).Error("postgres close failed", slog.Any("error", err))
	}
}
