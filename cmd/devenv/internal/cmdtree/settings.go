package cmdtree

import (
	"errors"
	"fmt"

	"github.com/imdario/mergo"
	"github.com/spf13/pflag"

	"github.com/ActiveState/devenv/internal/config"
	"github.com/ActiveState/devenv/internal/errs"
	"github.com/ActiveState/devenv/pkg/envspec"
	"github.com/ActiveState/devenv/pkg/evaluator"
	"github.com/ActiveState/devenv/pkg/resolver"
)

// settings are the inputs of an evaluation. Flags win over config, config wins over defaults.
type settings struct {
	SpecFile    string
	Stores      []string
	Parallelism int
	Format      string
	Inherit     bool
}

var defaultSettings = settings{
	Format: formatShell,
}

func bindEvaluationFlags(flags *pflag.FlagSet, s *settings) {
	flags.StringVarP(&s.SpecFile, "spec", "s", "", "Environment spec file, defaults to the built in spec")
	flags.StringSliceVar(&s.Stores, "store", nil, "Package store directory to resolve dependencies from, can be repeated")
	flags.IntVarP(&s.Parallelism, "parallel", "j", 0, "Number of dependencies to resolve concurrently")
	flags.BoolVar(&s.Inherit, "inherit", false, "Join path lists with the current process environment")
}

func resolveSettings(cfg *config.Instance, flagSettings settings) (settings, error) {
	res := flagSettings
	cfgSettings := settings{
		Stores:      cfg.GetStringSlice(config.StoresKey),
		Parallelism: cfg.GetInt(config.ParallelismKey),
		Inherit:     cfg.GetBool(config.InheritKey),
	}
	if err := mergo.Merge(&res, cfgSettings); err != nil {
		return res, errs.Wrap(err, "Could not merge configured settings")
	}
	if err := mergo.Merge(&res, defaultSettings); err != nil {
		return res, errs.Wrap(err, "Could not merge default settings")
	}
	return res, nil
}

func loadSpec(specFile string) (*envspec.Spec, error) {
	if specFile == "" {
		return envspec.Default(), nil
	}
	spec, err := envspec.Load(specFile)
	if err != nil {
		return nil, errs.WrapUserFacing(err, "Could not read the environment spec at "+specFile+".", errs.SetInput())
	}
	return spec, nil
}

func newResolver(stores []string) (resolver.Resolver, error) {
	if len(stores) == 0 {
		return nil, errs.NewUserFacing(
			"No package store configured.",
			errs.SetInput(),
			errs.SetTips(
				"Pass one with '--store <dir>'",
				"Or persist one with 'devenv config set "+config.StoresKey+" <dir>'",
			),
		)
	}
	chain := make(resolver.Chain, 0, len(stores))
	for _, store := range stores {
		chain = append(chain, resolver.NewStore(store))
	}
	return resolver.NewCached(chain, 0), nil
}

func evaluate(cfg *config.Instance, flagSettings settings) (*evaluator.Descriptor, settings, error) {
	s, err := resolveSettings(cfg, flagSettings)
	if err != nil {
		return nil, s, err
	}

	spec, err := loadSpec(s.SpecFile)
	if err != nil {
		return nil, s, err
	}

	r, err := newResolver(s.Stores)
	if err != nil {
		return nil, s, err
	}

	d, err := evaluator.Evaluate(spec, r, evaluator.WithParallelism(s.Parallelism))
	if err != nil {
		return nil, s, rationalizeError(err)
	}
	return d, s, nil
}

func rationalizeError(err error) error {
	var invalid *envspec.InvalidSpecError
	var notFound *evaluator.DependencyNotFoundError
	switch {
	case errors.As(err, &invalid):
		return errs.WrapUserFacing(err, errs.JoinMessage(err), errs.SetInput())
	case errors.As(err, &notFound) && resolver.IsNotFound(err):
		return errs.WrapUserFacing(err,
			fmt.Sprintf("The %s dependency '%s' was not found in any package store.", notFound.Role, notFound.Name),
			errs.SetTips("Check the name in your spec", "Add the store that provides it with '--store <dir>'"),
		)
	case errs.Matches(err, &evaluator.DependencyNotFoundError{}), errs.Matches(err, &evaluator.ConflictError{}):
		return errs.WrapUserFacing(err, errs.JoinMessage(err))
	}
	return err
}
