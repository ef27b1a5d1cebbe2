// Package main is the entry point for the annohelper command line.
//
// annohelper reviews annotation checkpoints without a user interface: it
// creates checkpoints from sample files, prints the current example, applies
// span edits, moves the cursor, runs Lua pre-annotation rules, and watches a
// checkpoint for changes made by other tools.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/annohelper/internal/app"
	"github.com/dshills/annohelper/internal/config"
	"github.com/dshills/annohelper/internal/store"
	"github.com/dshills/annohelper/internal/vfs"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

// defaultConfigPath is read when --config is not given. It may be absent.
const defaultConfigPath = "annohelper.toml"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// execute runs one command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{fsys: vfs.NewOSFS(), logger: app.NullLogger}

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		c.logger.Debug("command failed: %v", err)
		fmt.Fprintf(stderr, "annohelper: %s\n", app.StatusMessage(err))
		return 1
	}
	return 0
}

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string

	fsys   vfs.VFS
	cfg    config.Config
	logger *app.Logger
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "annohelper",
		Short:         "Review and annotate text examples stored in checkpoint files",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", defaultConfigPath, "path to a TOML or YAML configuration file")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides configuration)")

	root.AddCommand(
		c.initCmd(),
		c.inspectCmd(),
		c.markCmd(),
		c.nextCmd(),
		c.prevCmd(),
		c.seekCmd(),
		c.normalizeCmd(),
		c.premarkCmd(),
		c.watchCmd(),
	)
	return root
}

// setup loads configuration and builds the logger.
func (c *cli) setup(logOut io.Writer) error {
	cfg, err := config.Load(c.fsys, c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	c.cfg = cfg

	c.logger = app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(cfg.Log.Level),
		Output: logOut,
		Prefix: "annohelper",
	})
	c.logger.Debug("config loaded from %s", c.configPath)
	return nil
}

// store builds the checkpoint store for the loaded configuration.
func (c *cli) store() *store.Store {
	return store.New(c.fsys,
		store.WithMaxSize(c.cfg.Checkpoint.MaxSize),
		store.WithAtomic(c.cfg.Checkpoint.Atomic),
	)
}

// reviewer builds a Reviewer over the checkpoint store.
func (c *cli) reviewer() *app.Reviewer {
	return app.NewReviewer(c.store(), c.cfg, c.logger)
}

// open builds a Reviewer and opens the checkpoint named by args[0], or the
// configured default when args is empty.
func (c *cli) open(args []string) (*app.Reviewer, error) {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	r := c.reviewer()
	if err := r.Open(path); err != nil {
		return nil, err
	}
	return r, nil
}
