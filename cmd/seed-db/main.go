// Command seed-db loads the product catalog from a JSON file, creates a set
// of demo coupons, and registers an operator API key. Intended for local
// development and demo environments.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/retailcore/storefront/internal/domain/auth"
	"github.com/retailcore/storefront/internal/domain/coupon"
	"github.com/retailcore/storefront/internal/repository"
)

const (
	upsertProductSQL = `INSERT INTO products (id, name, price, category, image)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price,
			category = EXCLUDED.category, image = EXCLUDED.image`

	upsertOperatorKeySQL = `INSERT INTO operator_keys (id, key_hash, name, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (key_hash) DO UPDATE SET active = TRUE`
)

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    string          `json:"image"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		operatorKey  string
		pepper       string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&operatorKey, "operator-key", "", "operator API key to seed (or STORE_SEED_OPERATOR_KEY env)")
	flag.StringVar(&pepper, "api-key-pepper", "", "HMAC pepper for operator key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if operatorKey == "" {
		operatorKey = os.Getenv("STORE_SEED_OPERATOR_KEY")
	}
	if pepper == "" {
		pepper = os.Getenv("STORE_API_KEY_PEPPER")
	}
	if databaseURL == "" {
		slog.Error("database URL is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, operatorKey, pepper); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, productsFile, operatorKey, pepper string) error {
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCoupons(ctx, repository.NewCouponRepository(pool)); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if operatorKey != "" {
		if err := seedOperatorKey(ctx, pool, operatorKey, pepper); err != nil {
			return errors.Wrap(err, "seed operator key")
		}
	}

	slog.Info("seed complete")
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products file")
	}

	for _, p := range products {
		_, err := pool.Exec(ctx, upsertProductSQL, p.ID, p.Name, p.Price, p.Category, p.Image)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
	}

	slog.Info("seeded products", "count", len(products))
	return nil
}

func seedCoupons(ctx context.Context, repo *repository.CouponRepository) error {
	demo := []coupon.Coupon{
		{Code: "WELCOME10", DiscountType: coupon.DiscountPercentage, Value: decimal.NewFromInt(10), IsActive: true},
		{Code: "SAVE50", DiscountType: coupon.DiscountFixed, Value: decimal.NewFromInt(50), IsActive: true, MaxUses: 100},
	}

	for i := range demo {
		demo[i].CreatedAt = time.Now()
		if err := repo.Create(ctx, &demo[i]); err != nil {
			// Re-running the seeder against an existing database is fine.
			slog.Warn("skipping coupon", "code", demo[i].Code, "error", err)
		}
	}
	return nil
}

func seedOperatorKey(ctx context.Context, pool *pgxpool.Pool, rawKey, pepper string) error {
	hash := auth.HashKey(rawKey, []byte(pepper))
	_, err := pool.Exec(ctx, upsertOperatorKeySQL, uuid.New().String(), hash, "seeded")
	if err != nil {
		return errors.Wrap(err, "upsert operator key")
	}
	slog.Info("seeded operator key")
	return nil
}
