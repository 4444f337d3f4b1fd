package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"3s"`
	Seed    bool          `envconfig:"SEED" default:"true"`
}

// Flavor is the flavors table row. Price is kept as text and validated on read.
type Flavor struct {
	bun.BaseModel `bun:"table:flavors,alias:f"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Name        string `bun:"name,notnull,unique"`
	Price       string `bun:"price,notnull"`
	Ingredients string `bun:"ingredients"`
}

// BunCatalog reads flavors through bun.
type BunCatalog struct {
	db *bun.DB
}

func NewBunCatalog(db *bun.DB) (*BunCatalog, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &BunCatalog{db: db}, nil
}

// OpenPostgres opens a pgdriver-backed bun.DB and pings it.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*bun.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("catalog dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithTimeout(cfg.Timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping catalog db: %w", err)
	}
	return db, nil
}

func (c *BunCatalog) ListFlavors(ctx context.Context) ([]contractx.RawFlavor, error) {
	var rows []Flavor
	if err := c.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select flavors: %w", err)
	}
	out := make([]contractx.RawFlavor, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.RawFlavor{
			Name:        r.Name,
			Price:       r.Price,
			Ingredients: r.Ingredients,
		})
	}
	return out, nil
}

// Migrate creates the flavors table when missing.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*Flavor)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create flavors table: %w", err)
	}
	return nil
}

// Seed inserts flavors, leaving rows with an existing name untouched.
func Seed(ctx context.Context, db *bun.DB, flavors []contractx.RawFlavor) (int64, error) {
	if len(flavors) == 0 {
		return 0, nil
	}
	rows := make([]Flavor, 0, len(flavors))
	for _, f := range flavors {
		rows = append(rows, Flavor{Name: f.Name, Price: f.Price, Ingredients: f.Ingredients})
	}
	res, err := db.NewInsert().Model(&rows).Ignore().Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed flavors: %w", err)
	}
	n, _ := res.RowsAffected()
	log.Info().Int64("inserted", n).Int("offered", len(rows)).Msg("catalog seeded")
	return n, nil
}
