package cmdtree

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ActiveState/devenv/internal/errs"
)

func newSpecCommand(out io.Writer) *cobra.Command {
	var specFile string
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Validate and print an environment spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := loadSpec(specFile)
			if err != nil {
				return err
			}
			if err := spec.Validate(); err != nil {
				return rationalizeError(err)
			}
			blob, err := spec.Marshal()
			if err != nil {
				return errs.Wrap(err, "Could not render spec")
			}
			_, err = out.Write(blob)
			return err
		},
	}
	cmd.Flags().StringVarP(&specFile, "spec", "s", "", "Environment spec file, defaults to the built in spec")
	return cmd
}
