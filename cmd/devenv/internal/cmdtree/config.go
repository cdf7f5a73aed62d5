package cmdtree

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ActiveState/devenv/internal/config"
	"github.com/ActiveState/devenv/internal/errs"
)

func newConfigCommand(cfg *config.Instance, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "List persisted defaults, values that were never set are marked as defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range config.Keys() {
				line := key + ":"
				if v := configValueString(cfg, key); v != "" {
					line += " " + v
				}
				if !cfg.IsSet(key) {
					line += " (default)"
				}
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print a config value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := checkKey(args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintln(out, configValueString(cfg, args[0]))
				return err
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the directory the config is stored in",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(out, cfg.ConfigPath())
				return err
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>...",
			Short: "Persist a config value, list values take several arguments",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				key := args[0]
				if err := checkKey(key); err != nil {
					return err
				}
				var value interface{} = args[1]
				if config.GetRule(key).Type == config.StringSlice {
					value = args[1:]
				} else if len(args) > 2 {
					return errs.NewUserFacing(fmt.Sprintf("The config key '%s' takes a single value.", key), errs.SetInput())
				}
				if err := cfg.Set(key, value); err != nil {
					return errs.WrapUserFacing(err, errs.JoinMessage(err), errs.SetInput())
				}
				return nil
			},
		},
	)
	return cmd
}

func checkKey(key string) error {
	if config.KnownKey(key) {
		return nil
	}
	return errs.NewUserFacing(
		fmt.Sprintf("Unknown config key '%s'.", key),
		errs.SetInput(),
		errs.SetTips("Known keys are: "+strings.Join(config.Keys(), ", ")),
	)
}

func configValueString(cfg *config.Instance, key string) string {
	if config.GetRule(key).Type == config.StringSlice {
		return strings.Join(cfg.GetStringSlice(key), ", ")
	}
	return cfg.GetString(key)
}
