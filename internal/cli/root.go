// Package cli implements the decors command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/decors/internal/paths"
	"github.com/mesh-intelligence/decors/pkg/decors"
	"github.com/mesh-intelligence/decors/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds global flag values and the per-invocation config shared by
// subcommands.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool

	cfg    *viper.Viper
	logger *slog.Logger
}

// NewRootCmd creates the top-level "decors" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: slog.Default()}

	root := &cobra.Command{
		Use:     "decors",
		Short:   "Manage a decor inventory",
		Long:    "Decors keeps a local inventory of decor items: what they are made of,\nwhat they cost and how many are in stock.",
		Version: decors.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newSaleCmd(a),
		newRestockCmd(a),
		newReduceCmd(a),
		newSeedCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return exitCode(err)
}

// setup loads config.yaml and builds the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return systemError{fmt.Errorf("resolve config dir: %w", err)}
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return systemError{err}
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.GetString(cfgKeyLogLevel), cmd.ErrOrStderr())
	return nil
}

// usageError marks bad flags or arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// systemError marks failures of the environment rather than the input.
type systemError struct{ err error }

func (e systemError) Error() string { return e.err.Error() }
func (e systemError) Unwrap() error { return e.err }

// exitCode maps err to a process exit code. Storage and environment
// failures are system errors; everything else is the user's to fix.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var sys systemError
	switch {
	case errors.As(err, &sys),
		errors.Is(err, types.ErrStorageFailure),
		errors.Is(err, types.ErrSchemaDowngrade):
		return exitSysError
	default:
		return exitUserError
	}
}
