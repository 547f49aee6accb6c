package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/codesentry/internal/api"
)

// ServeCommand returns the CLI command for starting the local API server
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the local gateway API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides the config file)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, gateway, store, err := buildGateway(c)
			if err != nil {
				return err
			}
			defer store.Close()

			port := cfg.Server.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}

			fmt.Printf("Starting CodeSentry gateway on port %d...\n", port)

			server := api.NewServer(port, gateway, store)
			return server.Start()
		},
	}
}
