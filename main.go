package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	app := &cli.Command{
		Name:  "stockgallery",
		Usage: "Search Unsplash photos with incremental paging and a local response cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "interactive",
				Usage: "Serve repeated searches from the local cache",
				Value: true,
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			searchCommand(),
			browseCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
