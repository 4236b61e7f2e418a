package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/catalog/pokeapi"
	"github.com/AdamBeresnev/creature-cup/internal/config"
	"github.com/AdamBeresnev/creature-cup/internal/db"
	"github.com/AdamBeresnev/creature-cup/internal/service"
	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := newApp(cfg).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(cfg *config.Config) *cli.App {
	return &cli.App{
		Name:  "catalog",
		Usage: "manage the local creature catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Value: cfg.DatabasePath, Usage: "SQLite database path"},
		},
		Commands: []*cli.Command{
			migrateCommand(cfg),
			fetchCommand(cfg),
			showCommand(),
		},
	}
}

func migrateCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply database migrations",
		Action: func(c *cli.Context) error {
			database, err := db.Open(c.String("db"))
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.RunMigrations(database.DB, cfg.MigrationsPath); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "Migrations applied.")
			return nil
		},
	}
}

func fetchCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "import a range of catalog ids from PokeAPI",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "from", Value: 1, Usage: "first id"},
			&cli.IntFlag{Name: "to", Required: true, Usage: "last id"},
			&cli.IntFlag{Name: "concurrency", Value: 4, Usage: "parallel requests"},
		},
		Action: func(c *cli.Context) error {
			database, err := db.Open(c.String("db"))
			if err != nil {
				return err
			}
			defer database.Close()

			var names *catalog.NameTable
			if cfg.CatalogNamesFile != "" {
				if names, err = catalog.LoadNameTable(cfg.CatalogNamesFile); err != nil {
					return err
				}
			}

			client := pokeapi.NewClient(cfg.PokeAPIBaseURL,
				pokeapi.WithRateLimit(cfg.PokeAPIRatePerSecond),
				pokeapi.WithNameTable(names),
				pokeapi.WithLocale(cfg.CatalogLocale),
			)
			r := catalog.IDRange{First: c.Int("from"), Last: c.Int("to")}

			catalogStore := store.NewCatalogStore(database)
			summary, err := service.ImportCatalog(c.Context, client, catalogStore, r, c.Int("concurrency"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Imported %d items, %d missing, %d failed\n", summary.Imported, len(summary.Missing), len(summary.Failed))
			if len(summary.Failed) > 0 {
				fmt.Fprintf(c.App.Writer, "Failed ids: %v\n", summary.Failed)
			}

			total, err := catalogStore.Count(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Catalog now holds %d items\n", total)
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "print one cached catalog item",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := strconv.Atoi(c.Args().First())
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", c.Args().First(), err)
			}

			database, err := db.Open(c.String("db"))
			if err != nil {
				return err
			}
			defer database.Close()

			item, err := store.NewCatalogStore(database).Get(c.Context, id)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(item)
		},
	}
}
