package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"alpencams/internal/auth"
	"alpencams/internal/catalog"
	"alpencams/internal/presets"
	"alpencams/internal/repositories"
	"alpencams/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	runner, cleanup, err := buildRunner(config, logger)
	if err != nil {
		logger.Fatalf("startup error: %v", err)
	}
	defer cleanup()

	app := &cli.Command{
		Name:     "alpencams",
		Usage:    "Browse Austrian webcams and curate presets",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// buildRunner wires stores, auth state, and the preset engine from config.
func buildRunner(config *shared.Config, logger *log.Logger) (*Runner, func(), error) {
	cat, err := catalog.Load(config.Catalog.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	localPath := config.Local.Path
	if localPath == "" {
		if localPath, err = repositories.DefaultStorePath(); err != nil {
			return nil, nil, fmt.Errorf("failed to resolve local store path: %w", err)
		}
	}
	local := repositories.NewLocalRepository(repositories.NewFileStore(localPath))

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	authCtx := auth.NewContext(logger)
	if identity, err := loadStoredIdentity(); err == nil && identity != nil {
		authCtx.SignIn(*identity)
	}

	remote := repositories.NewRemoteRepository(db, authCtx)
	selector := repositories.NewSelector(local, remote, authCtx)
	engine := presets.NewEngine(cat, selector, authCtx, logger)

	// The sign-out transition itself is the logout trigger: whichever code
	// path clears the identity, the device resets to default presets.
	authCtx.Subscribe(func(from, to *auth.Identity) {
		if from == nil || to != nil {
			return
		}
		if err := engine.HandleLogout(context.Background()); err != nil {
			logger.Errorf("logout reset failed: %v", err)
		}
	})

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: cat,
		Auth:    authCtx,
		Engine:  engine,
		Logger:  logger,
	})

	cleanup := func() {
		authCtx.Close()
		db.Close()
	}
	return runner, cleanup, nil
}
