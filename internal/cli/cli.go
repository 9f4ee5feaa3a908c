package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/petems/screenrecord/internal/config"
	"github.com/petems/screenrecord/internal/consent"
	"github.com/petems/screenrecord/internal/dialog"
	"github.com/petems/screenrecord/internal/logging"
	"github.com/petems/screenrecord/internal/options"
	"github.com/petems/screenrecord/internal/overlay"
	"github.com/petems/screenrecord/internal/permissions"
	"github.com/petems/screenrecord/internal/recording"
	"github.com/petems/screenrecord/internal/resources"
	"github.com/petems/screenrecord/internal/settings"
	"github.com/petems/screenrecord/internal/tray"
	"github.com/petems/screenrecord/internal/tui"
)

type rootFlags struct {
	cfgPath   string
	verbosity int
}

// NewRootCmd creates the root CLI command. Without a subcommand it opens the
// recording options dialog.
func NewRootCmd(version, commit string) *cobra.Command {
	flags := &rootFlags{}
	var ui string

	cmd := &cobra.Command{
		Use:           "screenrecord",
		Short:         "Choose screen recording options and start a recording",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialog(cmd.Context(), flags, ui)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.cfgPath, "config", config.Path(), "path to config file")
	cmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	addUIFlag(cmd.Flags(), &ui)

	cmd.AddCommand(
		newDialogCmd(flags),
		newOptionsCmd(flags),
		newConfigCmd(flags),
	)

	return cmd
}

func addUIFlag(fs *pflag.FlagSet, target *string) {
	fs.StringVar(target, "ui", "", `dialog surface: "tray" or "tui" (default from config)`)
}

func newDialogCmd(flags *rootFlags) *cobra.Command {
	var ui string
	cmd := &cobra.Command{
		Use:   "dialog",
		Short: "Open the recording options dialog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialog(cmd.Context(), flags, ui)
		},
	}
	addUIFlag(cmd.Flags(), &ui)
	return cmd
}

func loadConfig(flags *rootFlags, ui string) (*config.Config, error) {
	cfg, err := config.LoadFrom(flags.cfgPath)
	if err != nil {
		return nil, err
	}
	if ui != "" {
		cfg.UI = ui
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	switch {
	case flags.verbosity >= 2:
		cfg.LogLevel = "trace"
	case flags.verbosity == 1:
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func runDialog(ctx context.Context, flags *rootFlags, ui string) error {
	cfg, err := loadConfig(flags, ui)
	if err != nil {
		return err
	}

	var log zerolog.Logger
	if cfg.UI == config.UITUI {
		log = logging.NewFileOnly(cfg.LogLevel)
	} else {
		log = logging.NewWithLevel(cfg.LogLevel)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := settings.OpenSQLite(cfg.Settings.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := settings.CurrentUser()
	if err != nil {
		return err
	}

	recorder, err := recording.NewExecService(cfg.Recorder.Command, cfg.Recorder.OutputDir, log)
	if err != nil {
		return err
	}

	dismisser, err := overlay.NewCommand(cfg.Overlay.DismissCommand)
	if err != nil {
		return err
	}

	strs := resources.New(cfg.Language)
	d := dialog.New(dialog.Config{
		Store:          store,
		User:           user,
		Permissions:    permissions.New(cfg.Recorder.OutputDir),
		Consent:        consent.New(),
		Recorder:       recorder,
		Overlay:        dismisser,
		OverlayTimeout: cfg.Overlay.Timeout,
		Strings:        strs,
		Logger:         log,
	})

	log.Info().Str("ui", cfg.UI).Msg("Opening recording dialog")

	if cfg.UI == config.UITUI {
		err = tui.Run(ctx, d, strs, log)
	} else {
		// Tray UI - MUST run on main thread
		err = tray.New(d, strs, log).Run(ctx)
	}
	if err != nil {
		return err
	}

	log.Info().Stringer("state", d.State()).AnErr("reason", d.Err()).Msg("Recording dialog closed")
	return nil
}

func newOptionsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Read or change the persisted recording options",
	}
	cmd.AddCommand(newOptionsGetCmd(flags), newOptionsSetCmd(flags))
	return cmd
}

func openStore(flags *rootFlags) (settings.Store, settings.User, error) {
	cfg, err := loadConfig(flags, "")
	if err != nil {
		return nil, "", err
	}
	store, err := settings.OpenSQLite(cfg.Settings.Path)
	if err != nil {
		return nil, "", err
	}
	user, err := settings.CurrentUser()
	if err != nil {
		store.Close()
		return nil, "", err
	}
	return store, user, nil
}

func newOptionsGetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current options as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, user, err := openStore(flags)
			if err != nil {
				return err
			}
			defer store.Close()

			v, err := options.Load(cmd.Context(), store, user)
			if err != nil {
				return err
			}
			return printValues(cmd.OutOrStdout(), v)
		},
	}
}

func newOptionsSetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <mic|taps|low_quality> <true|false>",
		Short: "Persist one option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := options.Parse(args[0])
			if err != nil {
				return err
			}
			on, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("value must be true or false: %w", err)
			}

			store, user, err := openStore(flags)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := options.Save(cmd.Context(), store, user, o, on); err != nil {
				return err
			}
			v, err := options.Load(cmd.Context(), store, user)
			if err != nil {
				return err
			}
			return printValues(cmd.OutOrStdout(), v)
		},
	}
}

func printValues(w io.Writer, v options.Values) error {
	out := make(map[string]bool, len(options.All))
	for _, o := range options.All {
		out[o.String()] = v.Get(o)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), flags.cfgPath)
				return err
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the effective configuration to the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadFrom(flags.cfgPath)
				if err != nil {
					return err
				}
				if err := cfg.Save(); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", flags.cfgPath)
				return err
			},
		},
	)
	return cmd
}
