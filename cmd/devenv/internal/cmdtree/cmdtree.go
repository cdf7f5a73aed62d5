package cmdtree

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ActiveState/devenv/internal/config"
	"github.com/ActiveState/devenv/internal/constants"
	"github.com/ActiveState/devenv/internal/logging"
)

// CmdTree holds the command tree of the devenv command
type CmdTree struct {
	cmd *cobra.Command
}

// New builds the command tree. Output of commands goes to out, cobra's own messages to errOut.
func New(cfg *config.Instance, out, errOut io.Writer) *CmdTree {
	var verbose bool
	root := &cobra.Command{
		Use:           constants.CommandName,
		Short:         "Compose build and development environments from declared dependencies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logging.SetMinimalLevel(logging.DEBUG)
			}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newEnvCommand(cfg, out),
		newHashCommand(cfg, out),
		newSpecCommand(out),
		newConfigCommand(cfg, out),
	)

	return &CmdTree{root}
}

// Execute runs the command named by args
func (ct *CmdTree) Execute(args []string) error {
	ct.cmd.SetArgs(args)
	return ct.cmd.Execute()
}
