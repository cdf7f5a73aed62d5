package cmdtree

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/ActiveState/devenv/internal/errs"
	"github.com/ActiveState/devenv/pkg/evaluator"
)

const (
	formatShell = "shell"
	formatEnv   = "env"
	formatJSON  = "json"
)

var formats = []string{formatShell, formatEnv, formatJSON}

type jsonOutput struct {
	Env          map[string]string              `json:"env"`
	Dependencies []evaluator.ResolvedDependency `json:"dependencies"`
	Hash         string                         `json:"hash"`
}

func shellQuote(v string) string {
	return shellquote.Join(v)
}

func sortedNames(env map[string]string) []string {
	names := make([]string, 0, len(env))
	for k := range env {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func writeEnvironment(w io.Writer, format string, d *evaluator.Descriptor, env map[string]string) error {
	switch format {
	case formatShell:
		for _, k := range sortedNames(env) {
			if _, err := fmt.Fprintf(w, "export %s=%s\n", k, shellQuote(env[k])); err != nil {
				return errs.Wrap(err, "Could not write environment")
			}
		}
	case formatEnv:
		for _, k := range sortedNames(env) {
			if _, err := fmt.Fprintf(w, "%s=%s\n", k, env[k]); err != nil {
				return errs.Wrap(err, "Could not write environment")
			}
		}
	case formatJSON:
		blob, err := json.MarshalIndent(jsonOutput{env, d.Dependencies(), d.Hash()}, "", "  ")
		if err != nil {
			return errs.Wrap(err, "Could not marshal environment")
		}
		if _, err := fmt.Fprintln(w, string(blob)); err != nil {
			return errs.Wrap(err, "Could not write environment")
		}
	default:
		return errs.NewUserFacing(
			fmt.Sprintf("Unknown output format '%s'.", format),
			errs.SetInput(),
			errs.SetTips("Valid formats are: "+strings.Join(formats, ", ")),
		)
	}
	return nil
}
