package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ewelina-dziedzic/grocery-shopping/config"
	"github.com/ewelina-dziedzic/grocery-shopping/internal/app"
	httpDelivery "github.com/ewelina-dziedzic/grocery-shopping/internal/delivery/http"
)

func main() {
	root := &cobra.Command{
		Use:           "grocery-shopping",
		Short:         "Grocery shopping automation: meal plan to delivered cart",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		flowCommand("listify", "Copy pending meal plan ingredients onto the grocery list",
			func(ctx context.Context, a *app.App) error { return a.Listify(ctx) }),
		flowCommand("schedule", "Reserve tomorrow's delivery window",
			func(ctx context.Context, a *app.App) error { return a.Schedule(ctx) }),
		flowCommand("shop", "Fill the store cart from the grocery list",
			func(ctx context.Context, a *app.App) error { return a.Shop(ctx) }),
		serveCommand(),
	)

	if err := root.Execute(); err != nil {
		log.Fatalf("Failed: %v", err)
	}
}

// flowCommand builds a subcommand that loads configuration, wires the
// application and runs one flow to completion.
func flowCommand(name, short string, flow func(ctx context.Context, a *app.App) error) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := buildApp()
			if err != nil {
				return err
			}
			return flow(cmd.Context(), a)
		},
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP trigger API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := buildApp()
			if err != nil {
				return err
			}

			handler := httpDelivery.NewHandler(a)
			router := httpDelivery.SetupRouter(cfg, handler)

			addr := fmt.Sprintf(":%s", cfg.Server.Port)
			log.Printf("Server listening on %s", addr)
			return router.Run(addr)
		},
	}
}

func buildApp() (*app.App, *config.Config, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Starting grocery-shopping v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Store: %s (%s)", cfg.Frisco.StoreName, cfg.Frisco.BaseURL)
	if cfg.Shopping.Debug {
		log.Printf("Debug logging enabled")
	}

	a, err := app.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return a, cfg, nil
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
