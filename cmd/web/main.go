package main

import (
	"context"
	"log"

	"github.com/recipecorner/recipecorner/internal/web"
	"github.com/recipecorner/recipecorner/internal/web/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := web.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
