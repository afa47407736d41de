package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gifapp/internal/catalog"
	"gifapp/internal/media"
	"gifapp/internal/model"
	"gifapp/internal/scan"
	"gifapp/internal/service"
	"gifapp/internal/store"
)

// Options are the locations the CLI works against.
type Options struct {
	DBPath     string // Directory holding the favorites database
	CacheDir   string // Directory for downloaded gifs; defaults to DBPath/cache
	CatalogURL string
}

func cliLogger(msg string) {
	log.Printf("[gifapp-cli] %s", msg)
}

// openService is the production initializer used by main.
func openService(opts Options, logger func(string)) (*service.Service, error) {
	dir := opts.DBPath
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(dir, "cache")
	}
	cat, err := catalog.NewClient(opts.CatalogURL, catalog.WithUserAgent("gifapp-cli/1.0"))
	if err != nil {
		return nil, err
	}
	cache, err := media.NewCache(cacheDir)
	if err != nil {
		return nil, err
	}
	fdb, err := store.Open(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open favorites DB: %w", err)
	}
	return service.NewService(fdb, cat, cache, scan.Walker{}, logger), nil
}

func printGif(cmd *cobra.Command, g model.Gif) {
	cmd.Printf("%s\t%s\n", g.ID, g.Title())
	if g.GifURL != "" {
		cmd.Printf("  url:  %s\n", g.GifURL)
	}
	if g.LocalPath != "" {
		cmd.Printf("  file: %s\n", g.LocalPath)
	}
}

func parsePage(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	page, err := strconv.Atoi(args[0])
	if err != nil || page < 0 {
		return 0, fmt.Errorf("invalid page %q: must be a non-negative number", args[0])
	}
	return page, nil
}

// NewRootCmd creates the root command for the CLI application.
// getService opens the service for the parsed options, which lets tests point
// the commands at a temporary store and a fake catalog.
func NewRootCmd(getService func(opts Options, logger func(string)) (*service.Service, error)) *cobra.Command {
	var (
		opts Options
		svc  *service.Service
	)
	closeService := func() {
		if svc == nil {
			return
		}
		if err := svc.Close(); err != nil {
			cliLogger("Error closing store: " + err.Error())
		}
		svc = nil
	}

	rootCmd := &cobra.Command{
		Use:           "gifapp-cli",
		Short:         "gifapp CLI - browse the gif catalog and manage favorites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			svc, err = getService(opts, cliLogger)
			if err != nil {
				return fmt.Errorf("failed to initialize service: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeService()
		},
	}

	// Random gif
	var saveFlag bool
	randomCmd := &cobra.Command{
		Use:   "random",
		Short: "Fetch a random gif from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := svc.Random(cmd.Context())
			if err != nil {
				return err
			}
			printGif(cmd, g)
			if !saveFlag {
				return nil
			}
			saved, err := svc.AddFavorite(cmd.Context(), g)
			if err != nil {
				return err
			}
			cmd.Printf("Saved %s to favorites.\n", saved.ID)
			return nil
		},
	}
	randomCmd.Flags().BoolVarP(&saveFlag, "save", "s", false, "Also store the gif as a favorite")
	rootCmd.AddCommand(randomCmd)

	// Catalog pages
	pageCmd := func(use, short string, fetch func(ctx context.Context, page int) (model.GifResponse, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [page]",
			Short: short,
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				page, err := parsePage(args)
				if err != nil {
					return err
				}
				resp, err := fetch(cmd.Context(), page)
				if err != nil {
					return err
				}
				if len(resp.Result) == 0 {
					cmd.Printf("No gifs on page %d.\n", page)
					return nil
				}
				for _, g := range resp.Result {
					printGif(cmd, g)
				}
				cmd.Printf("Page %d: %d of %d gif(s).\n", page, len(resp.Result), resp.TotalCount)
				return nil
			},
		}
	}
	rootCmd.AddCommand(pageCmd("latest", "List the most recent gifs", func(ctx context.Context, page int) (model.GifResponse, error) {
		return svc.Latest(ctx, page)
	}))
	rootCmd.AddCommand(pageCmd("top", "List the best rated gifs", func(ctx context.Context, page int) (model.GifResponse, error) {
		return svc.Top(ctx, page)
	}))

	// List favorites
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			favs, err := svc.Favorites()
			if err != nil {
				return err
			}
			if len(favs) == 0 {
				cmd.Println("No favorites saved.")
				return nil
			}
			for _, g := range favs {
				printGif(cmd, g)
			}
			cmd.Printf("%d favorite(s).\n", len(favs))
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	// Delete favorites
	var forceFlag bool
	deleteCmd := &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete favorites and their downloaded files",
		Long: `Delete favorites by id, together with their downloaded gif files.
Without --force only a summary is printed. With --force you are asked to type 'delete' to confirm.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			favs, err := svc.Favorites()
			if err != nil {
				return err
			}
			wanted := make(map[string]bool, len(args))
			for _, id := range args {
				wanted[id] = true
			}
			var matches []model.Gif
			for _, g := range favs {
				if wanted[g.ID] {
					matches = append(matches, g)
				}
			}
			if len(matches) == 0 {
				cmd.Println("No matching favorites found.")
				return nil
			}

			cmd.Println("The following favorites will be deleted:")
			for _, g := range matches {
				printGif(cmd, g)
			}
			if !forceFlag {
				cmd.Println("[DRY RUN] Nothing was deleted. Use --force to actually delete.")
				return nil
			}

			cmd.Print("Type 'delete' to confirm and proceed: ")
			response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if strings.ToLower(strings.TrimSpace(response)) != "delete" {
				cmd.Println("Aborted.")
				return nil
			}

			removed, err := svc.DeleteFavorites(model.IDs(matches))
			for _, g := range removed {
				cmd.Printf("Deleted %s.\n", g.ID)
			}
			return err
		},
	}
	deleteCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Delete after confirmation instead of only showing a summary")
	rootCmd.AddCommand(deleteCmd)

	// Legacy import
	var jsonPath, sqlitePath string
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Import favorites from the old JSON file and SQLite stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonPath == "" && sqlitePath == "" {
				return fmt.Errorf("nothing to import: give --json and/or --sqlite")
			}
			report, err := svc.Migrate(jsonPath, sqlitePath)
			if err != nil {
				return err
			}
			cmd.Printf("Imported %d favorite(s): %d from file, %d from database, %d skipped.\n",
				report.Imported(), report.FromFile, report.FromDatabase, report.Skipped)
			return nil
		},
	}
	migrateCmd.Flags().StringVar(&jsonPath, "json", "", "Path to the legacy "+store.LegacyFileName)
	migrateCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Path to the legacy "+store.LegacyDatabaseName)
	rootCmd.AddCommand(migrateCmd)

	// Cache cleanup
	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cached gifs no favorite refers to and clear stale file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := svc.CleanCache()
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d cached file(s), cleared %d missing path(s).\n", report.FilesRemoved, report.PathsCleared)
			return nil
		},
	}
	rootCmd.AddCommand(cleanCmd)

	// Store location and contents
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show where favorites and cached gifs are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := svc.Status()
			if err != nil {
				return err
			}
			cmd.Printf("Database:  %s\n", st.DatabasePath)
			cmd.Printf("Cache:     %s\n", st.CacheDir)
			cmd.Printf("Catalog:   %s\n", st.CatalogURL)
			cmd.Printf("Favorites: %d\n", st.Favorites)
			cmd.Printf("Legacy import done: %t\n", st.LegacyMigrated)
			return nil
		},
	}
	rootCmd.AddCommand(statusCmd)

	// PersistentPostRun is skipped when a command fails, so the store is
	// also released on the way out of every RunE.
	for _, c := range rootCmd.Commands() {
		run := c.RunE
		c.RunE = func(cmd *cobra.Command, args []string) error {
			defer closeService()
			return run(cmd, args)
		}
	}

	rootCmd.PersistentFlags().StringVar(&opts.DBPath, "dbpath", "", "Directory of the favorites database (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&opts.CacheDir, "cache-dir", "", "Directory for downloaded gifs (default: <dbpath>/cache)")
	rootCmd.PersistentFlags().StringVar(&opts.CatalogURL, "catalog-url", "", "Base URL of the gif catalog (default: "+catalog.DefaultBaseURL+")")

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCmd(openService)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
