package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"lhist/internal/api"
	"lhist/internal/app"
	"lhist/internal/config"
	"lhist/internal/history"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// a.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "lhist",
	Short: "Browse and recover files from an editor's local-history store",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["history_root"], defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("History Root: %s\n", cfg.HistoryRoot)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("History Root:  %s\n", cfg.HistoryRoot)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Include Empty: %v\n", cfg.Scanner.IncludeEmpty)
		fmt.Printf("Serve Addr:    %s\n", cfg.Serve.Addr)
		return nil
	},
}

// projects command
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects found in the history store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListProjects")
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.ListProjects()
		if err != nil || len(names) == 0 {
			fmt.Println("No history found.")
			return nil
		}

		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

// files command
var filesCmd = &cobra.Command{
	Use:   "files PROJECT",
	Short: "List recoverable files in a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("FilesFor")
		if err != nil {
			return err
		}
		defer a.Close()

		files, err := a.FilesFor(args[0])
		if err != nil || len(files) == 0 {
			fmt.Println("No recoverable files.")
			return nil
		}

		for _, f := range sortedFiles(files) {
			fmt.Printf("%s  %3d version(s)  %s\n",
				f.LatestTimestamp.Format("2006-01-02 15:04:05"),
				len(f.Versions),
				f.OriginalPath,
			)
		}
		return nil
	},
}

// versions command
var versionsCmd = &cobra.Command{
	Use:   "versions PROJECT FILE_PATH",
	Short: "List the captured versions of a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListVersions")
		if err != nil {
			return err
		}
		defer a.Close()

		file, err := a.FindFile(args[0], args[1])
		if err != nil {
			return err
		}

		for _, rec := range file.Versions {
			label := "????????????"
			if sum, err := history.ContentChecksum(rec); err == nil {
				label = sum[:12]
			}
			fmt.Printf("%s  %s  %6d  %s\n",
				label,
				rec.Timestamp.Format("2006-01-02 15:04:05"),
				rec.Size,
				rec.TrackingFolderID,
			)
		}
		return nil
	},
}

// show command
var showCmd = &cobra.Command{
	Use:   "show PROJECT FILE_PATH",
	Short: "Print the content of a captured version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("version")

		a, err := newApp("ShowContent")
		if err != nil {
			return err
		}
		defer a.Close()

		text, err := a.ShowContent(args[0], args[1], version)
		if err != nil {
			return err
		}

		fmt.Print(text)
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore PROJECT FILE_PATH",
	Short: "Copy a captured version back to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("version")
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp("Restore")
		if err != nil {
			return err
		}
		defer a.Close()

		dest, err := a.Restore(args[0], args[1], version, out)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		fmt.Printf("Restored to %s\n", dest)
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the history index over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		if addr == "" {
			addr = cfg.Serve.Addr
		}

		a, err := app.NewApp(cfg, "Serve")
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer a.Close()

		if cfg.Serve.Watch {
			if err := a.WatchStore(); err != nil {
				return err
			}
		}

		server := api.NewServer(addr, a.Cache(), a.Logger())

		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-done
			server.Shutdown(cmd.Context())
		}()

		fmt.Printf("Serving history index on http://%s\n", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

// sortedFiles orders a project's file map by original path for stable
// output.
func sortedFiles(files map[string]*history.RecoverableFile) []*history.RecoverableFile {
	out := make([]*history.RecoverableFile, 0, len(files))
	for _, f := range files {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b *history.RecoverableFile) int {
		return strings.Compare(a.OriginalPath, b.OriginalPath)
	})
	return out
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringP("version", "v", "", "Checksum prefix of the version to show (default: newest)")
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringP("version", "v", "", "Checksum prefix of the version to restore (default: newest)")
	restoreCmd.Flags().StringP("out", "o", ".", "Destination directory")
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default: from config)")
}
