package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ActiveState/devenv/cmd/devenv/internal/cmdtree"
	"github.com/ActiveState/devenv/internal/config"
	"github.com/ActiveState/devenv/internal/constants"
	"github.com/ActiveState/devenv/internal/errs"
	"github.com/ActiveState/devenv/internal/logging"
)

func main() {
	var exitCode int
	defer func() {
		logging.Close()
		os.Exit(exitCode)
	}()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load config: %s\n", errs.JoinMessage(err))
		exitCode = 1
		return
	}
	defer cfg.Close()

	if err := setupLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Could not set up logging: %s\n", errs.JoinMessage(err))
	}

	err = cmdtree.New(cfg, os.Stdout, os.Stderr).Execute(os.Args[1:])
	if err != nil {
		logging.Debug("Command failed: %s", errs.JoinMessage(err))
		fmt.Fprintln(os.Stderr, errs.UserMessage(err))
		if tips := errs.Tips(err); len(tips) > 0 {
			fmt.Fprintf(os.Stderr, "\nTips:\n - %s\n", strings.Join(tips, "\n - "))
		}
		exitCode = errs.UnwrapExitCode(err)
	}
}

func setupLogging(cfg *config.Instance) error {
	level := cfg.GetString(config.LogLevelKey)
	if v := os.Getenv(constants.LogLevelEnvVarName); v != "" {
		level = v
	}
	return logging.SetMinimalLevelByName(level)
}
