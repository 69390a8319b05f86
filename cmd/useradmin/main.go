package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/staffhub/internal/logging"
	"github.com/dmitrijs2005/staffhub/internal/server/auth"
	"github.com/dmitrijs2005/staffhub/internal/server/config"
	"github.com/dmitrijs2005/staffhub/internal/server/services"
	"github.com/dmitrijs2005/staffhub/internal/server/store"
	"github.com/dmitrijs2005/staffhub/internal/useradmin"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()

	opts, err := useradmin.ParseOptions(os.Args[1:])
	if err != nil {
		return err
	}

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}

	st, db, err := store.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	// registration never signs tokens, so no issuer is needed
	svc := services.NewAuthService(st, nil, hasher, logging.New(cfg.Env, os.Stderr))

	return useradmin.Run(ctx, opts, bufio.NewReader(os.Stdin), os.Stdout, svc)
}
