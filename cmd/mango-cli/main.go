package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"github.com/vrsandeep/mango-catalog/internal/config"
	"github.com/vrsandeep/mango-catalog/internal/core"
	"github.com/vrsandeep/mango-catalog/internal/export"
	"github.com/vrsandeep/mango-catalog/internal/library"
	"github.com/vrsandeep/mango-catalog/internal/models"
	"github.com/vrsandeep/mango-catalog/internal/store"
	"github.com/vrsandeep/mango-catalog/internal/util"
)

var version = "dev"

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cmd := newCommand()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Printf("mango-cli: %v", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "mango-cli",
		Usage:   "Catalog comic and manga archives found under a directory",
		Version: version,
		Commands: []*cli.Command{
			scanCommand(),
			listCommand(),
		},
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Scan a directory and export the catalog as JSON",
		ArgsUsage: "[directory] [output]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "db",
				Usage: "Also store the catalog in the configured database",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of archives inspected in parallel (0 uses the configured value)",
				Sources: cli.EnvVars("MANGO_SCAN_WORKERS"),
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format, json or yaml (default: chosen by the output extension)",
			},
			&cli.BoolFlag{
				Name:  "follow-symlinks",
				Usage: "Descend into symlinked directories",
			},
		},
		Action: runScan,
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print the catalog stored in the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Value: "json",
				Usage: "Output format, json or yaml",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := core.New(version)
			if err != nil {
				return err
			}
			defer app.Close()

			records, err := store.New(app.DB()).ListRecords()
			if err != nil {
				return err
			}
			format, err := export.ParseFormat(cmd.String("format"))
			if err != nil {
				return err
			}
			return export.Write(os.Stdout, format, records)
		},
	}
}

func runScan(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	root := cfg.Library.Path
	if cmd.Args().Len() > 0 {
		root = cmd.Args().Get(0)
	}
	output := cfg.Output.Path
	if cmd.Args().Len() > 1 {
		output = cmd.Args().Get(1)
	}
	if w := cmd.Int("workers"); w > 0 {
		cfg.Scan.Workers = int(w)
	}
	if cmd.Bool("follow-symlinks") {
		cfg.Scan.FollowSymlinks = true
	}

	format := export.FormatFromPath(output)
	if name := cmd.String("format"); name != "" {
		if format, err = export.ParseFormat(name); err != nil {
			return err
		}
	}
	if err := util.ValidateOutputPath(output); err != nil {
		return err
	}

	fmt.Printf("Scanning directory: %s\n", root)
	scanner := library.NewScanner(cfg)
	result, err := scanner.Scan(ctx, root)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d manga files\n", len(result.Records))
	if n := len(result.Diagnostics); n > 0 {
		fmt.Printf("%d problem(s) reported, see log output\n", n)
	}

	if rootMissing(result) {
		// An existing export is left alone rather than replaced with [].
		fmt.Printf("Library root %s not found, export to %s skipped\n", root, output)
	} else {
		if err := export.WriteFileFormat(output, format, result.Records); err != nil {
			return err
		}
		fmt.Printf("Exported %d manga to %s\n", len(result.Records), output)
	}

	if !cmd.Bool("db") {
		return nil
	}
	database, err := core.OpenDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	summary, err := library.SaveScanResult(database, result)
	if err != nil {
		return err
	}
	fmt.Printf("Catalog saved to %s: %d new, %d removed\n", cfg.Database.Path, summary.Added, summary.Removed)
	return nil
}

// rootMissing reports whether the scan never found its root directory.
func rootMissing(result *models.ScanResult) bool {
	for _, d := range result.Diagnostics {
		if d.Kind == models.DiagRootNotFound {
			return true
		}
	}
	return false
}
