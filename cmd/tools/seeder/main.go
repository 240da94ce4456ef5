package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aryanbrs/packklite-sub001/internal/db"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
)

func main() {
	var (
		catalogPath   = flag.String("catalog", "seed/catalog.yaml", "catalog YAML file; empty skips the catalog")
		adminEmail    = flag.String("admin-email", "", "bootstrap admin email, created only when no admin exists")
		adminName     = flag.String("admin-name", "Administrator", "bootstrap admin display name")
		adminPassword = flag.String("admin-password", "", "bootstrap admin password; defaults to APP_BOOTSTRAP_ADMIN_PASSWORD")
	)
	flag.Parse()
	_ = godotenv.Load()

	logger := obs.NewLogger("console", "info").With().Str("component", "seeder").Logger()

	dbURL := strings.TrimSpace(os.Getenv("APP_DATABASE_URL"))
	if dbURL == "" {
		logger.Fatal().Msg("APP_DATABASE_URL is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	if *catalogPath != "" {
		if err := seedCatalog(ctx, pool, *catalogPath, logger); err != nil {
			logger.Fatal().Err(err).Msg("seed catalog")
		}
	}

	password := *adminPassword
	if password == "" {
		password = os.Getenv("APP_BOOTSTRAP_ADMIN_PASSWORD")
	}
	if *adminEmail != "" {
		if err := seedAdmin(ctx, dbgen.New(pool), *adminEmail, *adminName, password, logger); err != nil {
			logger.Fatal().Err(err).Msg("seed admin")
		}
	}
	logger.Info().Msg("seeding completed")
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, path string, logger zerolog.Logger) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	file, err := parseCatalog(fh)
	if err != nil {
		return err
	}

	created := 0
	for _, p := range file.Products {
		err := db.InTx(ctx, pool, func(tx pgx.Tx) error {
			q := dbgen.New(tx)
			if _, err := q.GetProductBySlug(ctx, p.Slug); err == nil {
				return errSkip
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			row, err := q.CreateProduct(ctx, dbgen.CreateProductParams{
				Slug:        p.Slug,
				Name:        strings.TrimSpace(p.Name),
				Description: strings.TrimSpace(p.Description),
				Category:    strings.TrimSpace(p.Category),
				ImageUrl:    strings.TrimSpace(p.ImageURL),
				IsActive:    !p.Inactive,
			})
			if err != nil {
				return err
			}
			for i, v := range p.Variants {
				if _, err := q.CreateVariant(ctx, dbgen.CreateVariantParams{
					ProductID: row.ID,
					Sku:       v.SKU,
					SizeLabel: strings.TrimSpace(v.SizeLabel),
					BasePrice: v.price,
					IsActive:  !v.Inactive,
					Position:  int32(i),
				}); err != nil {
					return err
				}
			}
			return nil
		})
		switch {
		case errors.Is(err, errSkip):
			logger.Info().Str("slug", p.Slug).Msg("product exists, skipped")
		case err != nil:
			return err
		default:
			created++
		}
	}
	logger.Info().Int("created", created).Int("total", len(file.Products)).Msg("catalog seeded")
	return nil
}

var errSkip = errors.New("skip")

func seedAdmin(ctx context.Context, q *dbgen.Queries, email, name, password string, logger zerolog.Logger) error {
	count, err := q.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info().Int64("admins", count).Msg("admin accounts exist, bootstrap skipped")
		return nil
	}
	if len(password) < 12 {
		return errors.New("bootstrap admin password must be at least 12 characters")
	}
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return err
	}
	admin, err := q.CreateAdmin(ctx, dbgen.CreateAdminParams{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	logger.Info().Str("admin_id", admin.ID.String()).Str("email", admin.Email).Msg("bootstrap admin created")
	return nil
}
