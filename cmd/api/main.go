package main

import (
	"context"
	"log"

	"github.com/recipecorner/recipecorner/internal/api"
	"github.com/recipecorner/recipecorner/internal/api/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := api.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
