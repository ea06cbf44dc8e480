// package main provides the entry point of the release-notes-updater, which turns .NET release
// manifests into the published release notes documentation set.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ortelius/release-notes-updater/internal/api"
	"github.com/ortelius/release-notes-updater/internal/config"
	"github.com/ortelius/release-notes-updater/internal/services"
	"github.com/ortelius/release-notes-updater/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var (
	configFile string
	logger     *zap.SugaredLogger
	cfg        *config.Config

	// newLogger builds the process logger from the configured log file.
	newLogger = util.InitLogger
)

var rootCmd = &cobra.Command{
	Use:   "release-notes-updater",
	Short: "Generate .NET release notes from release manifests",
	Long: `Generate the .NET release notes documentation set from the release manifests of the
configured runtimes: download the manifest artifacts, render the release pages, channel
documents and index tables, and sync the result into the reference checkout.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return newUpdater().Run(cmd.Context())
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download and unpack the manifest artifacts of the configured builds",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return newUpdater().DownloadAll(cmd.Context())
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render documents from already downloaded manifests",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := newUpdater().Generate(cmd.Context())
		return err
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy a previously generated output tree into the reference checkout",
	RunE: func(_ *cobra.Command, _ []string) error {
		u := newUpdater()
		plan, err := u.PlanFromOutput()
		if err != nil {
			return err
		}
		return u.Sync(plan)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generated output tree for review",
	RunE: func(cmd *cobra.Command, _ []string) error {
		port := util.GetEnvDefault("RNU_PORT", "3000")
		app := api.NewFiberApp(cfg.OutputDir)
		go func() {
			<-cmd.Context().Done()
			_ = app.Shutdown()
		}()
		logger.Infof("Serving %s on port %s under /docs", cfg.OutputDir, port)
		return app.Listen(":" + port)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", util.GetEnvDefault("RNU_CONFIG", "config.yaml"), "path to the YAML configuration file")
	rootCmd.AddCommand(downloadCmd, generateCmd, syncCmd, serveCmd, versionCmd)
}

// setup loads the configuration and starts logging before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	path := configFile
	if !util.FileExists(path) {
		path = ""
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}

	zl, err := newLogger(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.RedirectStdLog(zl)

	cfg = c
	logger = zl.Sugar()
	if path == "" {
		logger.Infof("No configuration file at %s, using defaults and environment", configFile)
	}
	return nil
}

func newUpdater() *services.Updater {
	return services.NewUpdater(cfg, logger)
}

// execute runs the command line in args. A failing command is logged before it is returned; when
// it failed before logging started it goes to stderr instead.
func execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if logger != nil {
			logger.Errorf("release-notes-updater failed: %v", err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}
