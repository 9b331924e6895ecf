package postgres

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrationLockID clave del advisory lock que serializa migradores concurrentes.
const migrationLockID = 7462840

// ErrMigrationLocked otro proceso está aplicando migraciones.
var ErrMigrationLocked = errors.New("otro migrador está en ejecución")

// Migration archivo SQL embebido.
type Migration struct {
	Version  string
	Filename string
	Checksum string
	SQL      string
}

// Migrations lista los archivos embebidos ordenados por nombre (NNN_descripcion.sql).
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("leer migraciones: %w", err)
	}
	seen := make(map[string]bool)
	var list []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		parts := strings.SplitN(e.Name(), "_", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("nombre de migración inválido %q: se espera NNN_descripcion.sql", e.Name())
		}
		if seen[parts[0]] {
			return nil, fmt.Errorf("versión de migración duplicada: %s", parts[0])
		}
		seen[parts[0]] = true
		b, err := fs.ReadFile(migrationFS, "migrations/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", e.Name(), err)
		}
		sum := sha256.Sum256(b)
		list = append(list, Migration{
			Version:  parts[0],
			Filename: e.Name(),
			Checksum: hex.EncodeToString(sum[:]),
			SQL:      string(b),
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Filename < list[j].Filename })
	return list, nil
}

// Migrate aplica las migraciones pendientes, cada una en su propia transacción, y devuelve
// los nombres aplicados. Una migración ya registrada con otro checksum aborta el proceso.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("adquirir conexión: %w", err)
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", migrationLockID).Scan(&locked); err != nil {
		return nil, fmt.Errorf("advisory lock: %w", err)
	}
	if !locked {
		return nil, ErrMigrationLocked
	}
	defer func() {
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockID)
	}()

	if _, err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			checksum   TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return nil, fmt.Errorf("crear schema_migrations: %w", err)
	}

	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}
	var applied []string
	for _, m := range migrations {
		var existing string
		err := conn.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", m.Version).Scan(&existing)
		switch {
		case err == nil:
			if existing != m.Checksum {
				return applied, fmt.Errorf("checksum distinto para %s: registrado %s, actual %s", m.Filename, existing, m.Checksum)
			}
			log.Debug().Str("migration", m.Filename).Msg("migración ya aplicada")
			continue
		case !errors.Is(err, pgx.ErrNoRows):
			return applied, fmt.Errorf("consultar schema_migrations: %w", err)
		}

		if err := applyMigration(ctx, conn.Conn(), m); err != nil {
			return applied, err
		}
		log.Info().Str("migration", m.Filename).Msg("migración aplicada")
		applied = append(applied, m.Filename)
	}
	return applied, nil
}

func applyMigration(ctx context.Context, conn *pgx.Conn, m Migration) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s: %w", m.Filename, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return fmt.Errorf("ejecutar %s: %w", m.Filename, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		m.Version, m.Filename, m.Checksum,
	); err != nil {
		return fmt.Errorf("registrar %s: %w", m.Filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", m.Filename, err)
	}
	return nil
}
