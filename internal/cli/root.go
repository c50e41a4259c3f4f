package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"organizer/internal/config"
	"organizer/internal/logging"
	"organizer/internal/organizer"
	"organizer/internal/storage"
	"organizer/internal/ui"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DataPath   string
	Verbose    bool
}

// NewRootCommand creates the root command. Without a subcommand it starts
// the interactive organizer.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Organize tasks by category",
		Long:          "A personal task organizer. Run without arguments for the interactive view.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.ResolveConfigPath()+")")
	cmd.PersistentFlags().StringVar(&opts.DataPath, "data", "", "task file, overrides data_path from the config")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewDoneCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewPruneCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// loadConfig reads the config file, creating it with defaults on first use.
func (o *RootOptions) loadConfig() (config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if o.DataPath != "" {
		cfg.DataPath = o.DataPath
	}
	return cfg, nil
}

func openOrganizer(cfg config.Config, logger *log.Logger) *organizer.Organizer {
	return organizer.Open(storage.ForPath(cfg.DataPath, cfg.Format), cfg.DataPath, logger)
}

func runInteractive(opts *RootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := logging.NewFile(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	org := openOrganizer(cfg, logger)
	if err := ui.Run(org, cfg); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return org.Close()
}

// withOrganizer runs fn against the configured task file, logging to the
// command's stderr.
func withOrganizer(opts *RootOptions, cmd *cobra.Command, fn func(*organizer.Organizer) error) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logCfg := cfg.Log
	logCfg.Level = "warn"
	if opts.Verbose {
		logCfg.Level = "debug"
	}
	logger := logging.NewWriter(cmd.ErrOrStderr(), logCfg)
	return fn(openOrganizer(cfg, logger))
}

func parseID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}
