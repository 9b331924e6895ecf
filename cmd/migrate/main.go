// migrate aplica las migraciones SQL embebidas y crea el super_admin inicial.
//
// Uso: go run ./cmd/migrate [-list] [-skip-admin]
// La contraseña del admin se toma de ADMIN_PASSWORD; si está vacía no se crea el usuario.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ArtEnginer/POS/internal/application/auth"
	"github.com/ArtEnginer/POS/internal/infrastructure/postgres"
	"github.com/ArtEnginer/POS/pkg/config"
	"github.com/ArtEnginer/POS/pkg/logger"
)

func main() {
	list := flag.Bool("list", false, "solo listar las migraciones embebidas")
	skipAdmin := flag.Bool("skip-admin", false, "no crear el super_admin inicial")
	flag.Parse()

	_ = godotenv.Load()

	if *list {
		migrations, err := postgres.Migrations()
		if err != nil {
			fmt.Fprintf(os.Stderr, "leer migraciones: %v\n", err)
			os.Exit(1)
		}
		for _, m := range migrations {
			fmt.Printf("%s  %s  %s\n", m.Version, m.Checksum[:12], m.Filename)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "pos-migrate"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Strs("applied", applied).Msg("migraciones")
	}
	log.Info().Int("applied", len(applied)).Msg("migraciones al día")

	if *skipAdmin || cfg.Admin.Password == "" {
		log.Info().Msg("ADMIN_PASSWORD vacío, no se crea el super_admin")
		return
	}
	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), nil, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		log.Fatal().Err(err).Msg("crear super_admin")
	}
	if created {
		log.Info().Str("username", cfg.Admin.Username).Msg("super_admin creado")
	} else {
		log.Info().Str("username", cfg.Admin.Username).Msg("super_admin ya existía")
	}
}
