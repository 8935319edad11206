package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"curricula/internal/app"
	"curricula/internal/config"
	"curricula/internal/domain"
	"curricula/internal/logger"
	"curricula/internal/template"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	outputDir   string
	templateDir string
	store       bool
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "curricula",
		Short: "Build master curricula from discipline templates",
		Long: `curricula sequences the concepts of a discipline template, checks the
category prerequisite graph and writes the curriculum table, graph,
depth heatmap and JSON snapshot.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.outputDir, "out", "o", "", "output directory (default from config)")
	flags.StringVarP(&opts.templateDir, "templates", "t", "", "directory of extra discipline templates")
	flags.BoolVar(&opts.store, "store", false, "persist builds in the configured database")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newBuildCmd(opts),
		newBuildAllCmd(opts),
		newListCmd(opts),
		newValidateCmd(),
	)
	return rootCmd
}

func newBuildCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build [discipline]",
		Short: "Build the master curriculum of one discipline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			discipline := cfg.Build.Discipline
			if len(args) == 1 {
				discipline = args[0]
			}

			return opts.withApp(cmd, cfg, func(ctx context.Context, a *app.App) error {
				mc, err := a.Service.Build(ctx, discipline)
				if err != nil {
					return err
				}
				printSummaries(cmd.OutOrStdout(), mc)
				return nil
			})
		},
	}
}

func newBuildAllCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build-all",
		Short: "Build every registered discipline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, cfg, func(ctx context.Context, a *app.App) error {
				builds, err := a.Service.BuildAll(ctx)
				if err != nil {
					return err
				}
				printSummaries(cmd.OutOrStdout(), builds...)
				return nil
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the disciplines with a registered template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			reg, err := app.NewRegistry(cfg)
			if err != nil {
				return err
			}
			for _, d := range reg.Disciplines() {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check discipline template files without building them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				tpl, err := template.LoadFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s\n", path)
					printValidationError(out, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s (%s, %d categories)\n", path, tpl.Discipline, len(tpl.CategoryProgression))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d templates invalid", failed, len(args))
			}
			return nil
		},
	}
}

// config loads the configuration file and applies the flag overrides.
func (o *rootOptions) config() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if o.outputDir != "" {
		cfg.Build.OutputDir = o.outputDir
	}
	if o.templateDir != "" {
		cfg.Build.TemplateDir = o.templateDir
	}
	if o.logLevel != "" {
		cfg.Logger.Level = o.logLevel
	}
	return cfg, nil
}

// withApp wires the service, runs fn with a context cancelled on SIGINT or
// SIGTERM and releases the connections afterwards.
func (o *rootOptions) withApp(cmd *cobra.Command, cfg *config.Config, fn func(context.Context, *app.App) error) error {
	if err := logger.Initialize(cfg.Logger); err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger.Get(), app.Options{
		Store:      o.store,
		Migrate:    o.store,
		Registerer: prometheus.NewRegistry(),
	})
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Get().Warn("Failed to close connections", zap.Error(cerr))
		}
	}()
	if err != nil {
		return err
	}
	return fn(ctx, a)
}

func printSummaries(w io.Writer, builds ...*domain.MasterCurriculum) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DISCIPLINE\tCONCEPTS\tCATEGORIES\tTABLE\tGRAPH\tHEATMAP\tSNAPSHOT")
	for _, mc := range builds {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\n", mc.Discipline, mc.TotalConcepts, mc.Categories,
			mc.CurriculumTablePath, mc.GraphPath, mc.HeatmapPath, mc.SnapshotPath)
	}
	tw.Flush()
}

func printValidationError(w io.Writer, err error) {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		for _, v := range verrs {
			fmt.Fprintf(w, "  - %s\n", v.Error())
		}
		return
	}
	fmt.Fprintf(w, "  - %v\n", err)
}
