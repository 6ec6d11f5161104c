package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/leca/dt-petfriends/internal/config"
	"github.com/leca/dt-petfriends/internal/database"
	"github.com/leca/dt-petfriends/internal/router"
	"github.com/leca/dt-petfriends/internal/storage"
)

func main() {
	cfg := config.Load()
	cfg.AddFlags(pflag.CommandLine)
	pflag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	db, err := database.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewFileSystem(cfg.StoragePath)

	srv := router.New(db, store, cfg)

	if cfg.SeedEmail != "" {
		u, err := srv.Handler.EnsureUser(cfg.SeedEmail, cfg.SeedPassword)
		if err != nil {
			slog.Error("failed to seed account", "email", cfg.SeedEmail, "error", err)
			os.Exit(1)
		}
		slog.Info("seeded account", "user_id", u.ID, "email", u.Email)
	}

	if n, err := db.CountPets(""); err != nil {
		slog.Warn("failed to count pets", "error", err)
	} else {
		slog.Info("database ready", "path", cfg.DBPath, "pets", n)
	}

	slog.Info("starting server", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
