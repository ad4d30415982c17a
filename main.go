package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	conf "github.com/soeborg/bikestore-etl/internal/config"
	"github.com/soeborg/bikestore-etl/internal/db"
	logs "github.com/soeborg/bikestore-etl/internal/logs"
	"github.com/soeborg/bikestore-etl/internal/pipeline"
	"github.com/soeborg/bikestore-etl/internal/shell"
)

// override with: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

func main() {
	appDir := mustAppDataDir("bikestore-etl")

	cfgPath := filepath.Join(appDir, "config.json")
	cfg, firstRun, err := conf.LoadOrCreate(cfgPath)
	if err != nil {
		panic(err)
	}

	log := logs.New(filepath.Join(appDir, "app.log"), cfg.LogLevel, true)
	if firstRun {
		log.Info().Msgf("created default config: %s", cfgPath)
	}

	dsn := cfg.Database.DSN
	if cfg.Database.Driver == "sqlite" && dsn != ":memory:" && !filepath.IsAbs(dsn) {
		dsn = filepath.Join(appDir, dsn)
	}
	dbh, err := db.Open(cfg.Database.Driver, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("DB open error")
	}
	if err := dbh.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("DB migrate error")
	}
	log.Info().Str("driver", dbh.Driver).Msg("DB ready")
	defer dbh.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pipe := pipeline.New(log, cfg, dbh.DB)
	if cfg.AutoLoad {
		if _, err := pipe.Run(ctx); err != nil {
			log.Error().Err(err).Msg("auto load failed")
		}
	}

	fmt.Println("BikeStore ETL", ver)
	sh := shell.New(log, cfg, dbh.DB, pipe, os.Stdin, os.Stdout)
	if err := sh.Run(ctx); err != nil {
		switch {
		case errors.Is(err, shell.ErrLoginFailed):
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		case errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
			return
		default:
			log.Fatal().Err(err).Msg("shell error")
		}
	}
}

func mustAppDataDir(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	p := filepath.Join(base, name)
	_ = os.MkdirAll(p, 0o755)
	return p
}
