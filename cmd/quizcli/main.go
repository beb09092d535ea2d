package main

import (
	"context"
	"log"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/cli"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(context.Background())
}
