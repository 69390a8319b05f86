package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/dmitrijs2005/staffhub/internal/server"
	"github.com/dmitrijs2005/staffhub/internal/server/config"
)

func main() {

	if slices.Contains(os.Args[1:], "-h") || slices.Contains(os.Args[1:], "--help") {
		fmt.Println("Flags: -c/-config file, -e env, -a addr, -n name, -d dsn, -s secret, -t/-r minutes, -b cost")
		fmt.Println(config.EnvUsage())
		return
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
