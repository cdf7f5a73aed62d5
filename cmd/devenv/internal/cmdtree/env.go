package cmdtree

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ActiveState/devenv/internal/config"
	"github.com/ActiveState/devenv/internal/errs"
)

func newEnvCommand(cfg *config.Instance, out io.Writer) *cobra.Command {
	s := settings{}
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the environment variables of the evaluated spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, resolved, err := evaluate(cfg, s)
			if err != nil {
				return err
			}

			env := d.Env()
			if resolved.Inherit {
				env, err = d.EnvBasedOn(os.LookupEnv)
				if err != nil {
					return errs.Wrap(err, "Could not join the environment with the current process environment")
				}
			}
			return writeEnvironment(out, resolved.Format, d, env)
		},
	}
	bindEvaluationFlags(cmd.Flags(), &s)
	cmd.Flags().StringVarP(&s.Format, "format", "f", "", "Output format: shell, env or json")
	return cmd
}

func newHashCommand(cfg *config.Instance, out io.Writer) *cobra.Command {
	s := settings{}
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the fingerprint of the evaluated environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := evaluate(cfg, s)
			if err != nil {
				return err
			}
			_, err = io.WriteString(out, d.Hash()+"\n")
			return err
		},
	}
	bindEvaluationFlags(cmd.Flags(), &s)
	return cmd
}
