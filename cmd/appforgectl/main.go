package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/cli"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(func() (*gorm.DB, error) {
		if err := database.Connect(cfg); err != nil {
			return nil, err
		}
		return database.DB, nil
	})

	err := root.ExecuteContext(ctx)
	if database.DB != nil {
		_ = database.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
