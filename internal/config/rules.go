package config

import (
	"sort"

	"github.com/thoas/go-funk"

	"github.com/ActiveState/devenv/internal/errs"
)

type Type int

const (
	String Type = iota
	Int
	Bool
	StringSlice
	// Enum is a string restricted to Rule.Options
	Enum
)

// Rule describes how a config key is cast and what it defaults to when unset
type Rule struct {
	Type    Type
	Default interface{}
	Options []string
}

const (
	// StoresKey lists the package store directories consulted by the store resolver, in priority order
	StoresKey = "resolver.stores"
	// ParallelismKey is the number of concurrent resolutions, 0 or 1 means sequential
	ParallelismKey = "evaluate.parallelism"
	// InheritKey makes evaluations join path lists with the calling process environment
	InheritKey = "evaluate.inherit"
	// LogLevelKey is the minimal log level name
	LogLevelKey = "log.level"
)

var rules = map[string]Rule{
	StoresKey:      {Type: StringSlice, Default: []string{}},
	ParallelismKey: {Type: Int, Default: 0},
	InheritKey:     {Type: Bool, Default: false},
	LogLevelKey:    {Type: Enum, Default: "normal", Options: []string{"debug", "info", "warning", "error", "notice", "critical", "quiet", "normal", "all", "nothing"}},
}

// Keys returns the known config keys, sorted
func Keys() []string {
	keys := funk.Keys(rules).([]string)
	sort.Strings(keys)
	return keys
}

// GetRule returns the rule for a key, unknown keys are plain strings without default
func GetRule(key string) Rule {
	if rule, ok := rules[key]; ok {
		return rule
	}
	return Rule{Type: String}
}

// KnownKey returns whether a rule was registered for the key
func KnownKey(key string) bool {
	_, ok := rules[key]
	return ok
}

func (r Rule) validate(key string, v interface{}) error {
	if r.Type != Enum {
		return nil
	}
	s, _ := v.(string)
	for _, opt := range r.Options {
		if s == opt {
			return nil
		}
	}
	return errs.New("Invalid value '%v' for config key %s, valid values are: %v", v, key, r.Options)
}
