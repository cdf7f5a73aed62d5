package envdef

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/thoas/go-funk"

	"github.com/ActiveState/devenv/internal/constants"
	"github.com/ActiveState/devenv/internal/errs"
)

// EnvironmentDefinition provides all the information needed to set up an
// environment in which the contents of a resolved dependency can be used.
type EnvironmentDefinition struct {
	// Env is a list of environment variables to be set
	Env []EnvironmentVariable `json:"env"`

	// InstallDir is the directory the dependency is installed in
	InstallDir string `json:"installdir,omitempty"`
}

// EnvironmentVariable defines a single environment variable and its values
type EnvironmentVariable struct {
	Name      string       `json:"env_name"`
	Values    []string     `json:"values"`
	Join      VariableJoin `json:"join"`
	Inherit   bool         `json:"inherit"`
	Separator string       `json:"separator"`
}

// DefaultSeparator joins the values of path list variables
var DefaultSeparator = string(os.PathListSeparator)

// VariableJoin defines a strategy to join environment variables together
type VariableJoin int

const (
	// Prepend indicates that new variables should be prepended
	Prepend VariableJoin = iota
	// Append indicates that new variables should be appended
	Append
	// Disallowed indicates that there must be only one value for an environment variable
	Disallowed
)

// MarshalText marshals a join directive for environment variables
func (j VariableJoin) MarshalText() ([]byte, error) {
	var res string
	switch j {
	default:
		res = "prepend"
	case Append:
		res = "append"
	case Disallowed:
		res = "disallowed"
	}
	return []byte(res), nil
}

// UnmarshalText un-marshals a join directive for environment variables
func (j *VariableJoin) UnmarshalText(text []byte) error {
	switch string(text) {
	case "prepend":
		*j = Prepend
	case "append":
		*j = Append
	case "disallowed":
		*j = Disallowed
	default:
		return fmt.Errorf("Invalid join directive %s", string(text))
	}
	return nil
}

// NewPathVariable returns an inheriting path list variable that appends its values
func NewPathVariable(name string, values ...string) EnvironmentVariable {
	return EnvironmentVariable{
		Name:      name,
		Values:    values,
		Join:      Append,
		Inherit:   true,
		Separator: DefaultSeparator,
	}
}

// NewScalarVariable returns a variable that holds exactly one value
func NewScalarVariable(name, value string) EnvironmentVariable {
	return EnvironmentVariable{
		Name:      name,
		Values:    []string{value},
		Join:      Disallowed,
		Separator: DefaultSeparator,
	}
}

// UnmarshalJSON unmarshals an environment variable
// It sets default values for Inherit, Join and Separator if they are not specified
func (ev *EnvironmentVariable) UnmarshalJSON(data []byte) error {
	type evAlias EnvironmentVariable
	v := &evAlias{
		Inherit:   true,
		Separator: DefaultSeparator,
		Join:      Prepend,
	}

	err := json.Unmarshal(data, v)
	if err != nil {
		return err
	}

	*ev = EnvironmentVariable(*v)
	return nil
}

// NewEnvironmentDefinition returns an environment definition unmarshaled from a
// file
func NewEnvironmentDefinition(fp string) (*EnvironmentDefinition, error) {
	blob, err := os.ReadFile(fp)
	if err != nil {
		return nil, errs.Wrap(err, "Environment definition file not found: %s", fp)
	}
	ed := &EnvironmentDefinition{}
	err = json.Unmarshal(blob, ed)
	if err != nil {
		return nil, errs.Wrap(err, "Could not unmarshal environment definition file: %s", fp)
	}
	return ed, nil
}

// WriteFile marshals an environment definition to a file
func (ed *EnvironmentDefinition) WriteFile(filepath string) error {
	blob, err := ed.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, blob, 0666)
}

// Marshal marshals an environment definition to indented JSON
func (ed *EnvironmentDefinition) Marshal() ([]byte, error) {
	blob, err := json.MarshalIndent(ed, "", "  ")
	if err != nil {
		return []byte(""), err
	}
	return blob, nil
}

// Copy returns a deep copy, so the result can be changed without affecting the receiver
func (ed *EnvironmentDefinition) Copy() *EnvironmentDefinition {
	res := &EnvironmentDefinition{InstallDir: ed.InstallDir, Env: make([]EnvironmentVariable, 0, len(ed.Env))}
	for _, ev := range ed.Env {
		ev.Values = append([]string{}, ev.Values...)
		res.Env = append(res.Env, ev)
	}
	return res
}

// Names returns the variable names in definition order
func (ed *EnvironmentDefinition) Names() []string {
	return funk.Map(ed.Env, func(x EnvironmentVariable) string { return x.Name }).([]string)
}

// Constants are the substitution values for `${NAME}` strings in variable values
type Constants map[string]string

// NewConstants returns the constants for a dependency installed at installDir
func NewConstants(installDir string) Constants {
	return Constants{constants.InstallDirVariable: installDir}
}

// ExpandVariables expands substitution strings specified in the environment variable values.
// Right now, the only valid substition string is `${INSTALLDIR}` which is being replaced
// with the directory the dependency is installed in.
func (ed *EnvironmentDefinition) ExpandVariables(constants Constants) *EnvironmentDefinition {
	res := ed.Copy()
	for k, v := range constants {
		res = res.ReplaceString(fmt.Sprintf("${%s}", k), v)
	}
	return res
}

// ReplaceString replaces the string `from` with its `replacement` value
// in every environment variable value
func (ed *EnvironmentDefinition) ReplaceString(from string, replacement string) *EnvironmentDefinition {
	res := *ed
	newEnv := make([]EnvironmentVariable, 0, len(ed.Env))
	for _, ev := range ed.Env {
		newEnv = append(newEnv, ev.ReplaceString(from, replacement))
	}
	res.Env = newEnv
	return &res
}

// Merge merges two environment definitions according to the join strategy of
// the second one.
// - Environment variables that are defined in both definitions, are merged with
//   EnvironmentVariable.Merge() and keep their position in the receiver
// - Environment variables that are defined in only one of the two definitions,
//   are added to the result directly, the ones of the second definition after
//   the ones of the receiver
func (ed EnvironmentDefinition) Merge(other *EnvironmentDefinition) (*EnvironmentDefinition, error) {
	res := ed
	if other == nil {
		return &res, nil
	}

	thisEnvNames := ed.Names()

	newKeys := make([]string, 0, len(other.Env))
	otherEnvMap := map[string]EnvironmentVariable{}
	for _, ev := range other.Env {
		if existing, ok := otherEnvMap[ev.Name]; ok {
			// a definition listing a variable twice is folded into itself first
			mev, err := existing.Merge(ev)
			if err != nil {
				return nil, err
			}
			ev = *mev
		} else if !funk.ContainsString(thisEnvNames, ev.Name) {
			newKeys = append(newKeys, ev.Name)
		}
		otherEnvMap[ev.Name] = ev
	}

	newEnv := make([]EnvironmentVariable, 0, len(ed.Env)+len(newKeys))

	// merge keys
	for _, ev := range ed.Env {
		otherEv, ok := otherEnvMap[ev.Name]
		if !ok {
			// if key exists only in this variable, use it
			newEnv = append(newEnv, ev)
		} else {
			// otherwise: merge this variable and the other environment variable
			mev, err := ev.Merge(otherEv)
			if err != nil {
				return nil, err
			}
			newEnv = append(newEnv, *mev)
		}
	}

	// add new keys to environment
	for _, k := range newKeys {
		newEnv = append(newEnv, otherEnvMap[k])
	}

	res.Env = newEnv
	return &res, nil
}

// ReplaceString replaces the string 'from' with 'replacement' in
// environment variable values
func (ev EnvironmentVariable) ReplaceString(from string, replacement string) EnvironmentVariable {
	res := ev
	values := make([]string, 0, len(ev.Values))

	for _, v := range ev.Values {
		values = append(values, strings.ReplaceAll(v, from, replacement))
	}
	res.Values = values
	return res
}

// Merge merges two environment variables according to the join strategy defined by
// the second environment variable
// If join strategy of the second variable is "prepend" or "append", the values
// are prepended or appended to the first variable.
// If join strategy is set to "disallowed", the variables need to have exactly
// one value, and both merged values need to be identical, otherwise a
// *MergeConflictError is returned.
func (ev EnvironmentVariable) Merge(other EnvironmentVariable) (*EnvironmentVariable, error) {
	res := ev

	// separators and inherit strategy always need to match for two merged variables
	if ev.Separator != other.Separator || ev.Inherit != other.Inherit {
		return nil, newMergeConflictError(ev.Name, "incompatible `separator` or `inherit` directives")
	}

	// 'disallowed' join strategy needs to be set for both or none of the variables
	if (ev.Join == Disallowed || other.Join == Disallowed) && ev.Join != other.Join {
		return nil, newMergeConflictError(ev.Name, "incompatible `join` directives")
	}

	switch other.Join {
	case Prepend:
		res.Values = append(append([]string{}, other.Values...), ev.Values...)
	case Append:
		res.Values = append(append([]string{}, ev.Values...), other.Values...)
	case Disallowed:
		if len(ev.Values) != 1 || len(other.Values) != 1 || (ev.Values[0] != other.Values[0]) {
			sep := string(ev.Separator)
			return nil, newMergeConflictError(ev.Name,
				"no join strategy for values %s and %s",
				strings.Join(ev.Values, sep), strings.Join(other.Values, sep),
			)
		}
	default:
		return nil, errs.New("could not join environment variable %s: invalid `join` directive %v", ev.Name, other.Join)
	}
	res.Join = other.Join
	return &res, nil
}

// filterValuesUniquely removes duplicate entries from a list of strings
// If `keepFirst` is true, only the first occurrence is kept, otherwise the last
// one.
func filterValuesUniquely(values []string, keepFirst bool) []string {
	nvs := make([]*string, len(values))
	posMap := map[string][]int{}

	for i, v := range values {
		posMap[v] = append(posMap[v], i)
	}

	var getPos func([]int) int
	if keepFirst {
		getPos = func(x []int) int { return x[0] }
	} else {
		getPos = func(x []int) int { return x[len(x)-1] }
	}

	for v, positions := range posMap {
		pos := getPos(positions)
		cv := v
		nvs[pos] = &cv
	}

	res := make([]string, 0, len(values))
	for _, nv := range nvs {
		if nv != nil {
			res = append(res, *nv)
		}
	}
	return res
}

// UniqueValues returns the values with duplicates removed, the first occurrence wins
func (ev *EnvironmentVariable) UniqueValues() []string {
	return filterValuesUniquely(ev.Values, true)
}

// ValueString joins the environment variable values into a single string
// If duplicate values are found, only the first occurrence is considered, so a
// path keeps the precedence of the dependency that contributed it first.
func (ev *EnvironmentVariable) ValueString() string {
	return strings.Join(ev.UniqueValues(), string(ev.Separator))
}

// GetEnvBasedOn returns the environment variable names and values defined by
// the EnvironmentDefinition.
// If an environment variable is configured to inherit from the base
// environment (`Inherit==true`), the entries of the base value defined by the
// `envLookup` method are placed after the values of the definition. Variables
// with the `disallowed` join strategy never inherit, their single value wins.
func (ed *EnvironmentDefinition) GetEnvBasedOn(envLookup func(string) (string, bool)) (map[string]string, error) {
	res := map[string]string{}

	for _, ev := range ed.Env {
		// only add environment variable if at least one value is set (This allows us to remove variables from the environment.)
		if len(ev.Values) == 0 {
			continue
		}
		if ev.Join == Disallowed && len(ev.Values) != 1 {
			return nil, newMergeConflictError(ev.Name, "expected exactly one value, got %d", len(ev.Values))
		}

		pev := ev
		if ev.Inherit && ev.Join != Disallowed {
			if osValue, hasOsValue := envLookup(ev.Name); hasOsValue {
				pev.Values = append([]string{}, ev.Values...)
				inherited := []string{osValue}
				if ev.Separator != "" {
					inherited = strings.Split(osValue, ev.Separator)
				}
				for _, v := range inherited {
					if v != "" {
						pev.Values = append(pev.Values, v)
					}
				}
			}
		}
		res[pev.Name] = pev.ValueString()
	}
	return res, nil
}

// GetEnv returns the environment variable names and values defined by
// the EnvironmentDefinition, without inheriting from the OS environment.
func (ed *EnvironmentDefinition) GetEnv() map[string]string {
	res, err := ed.GetEnvBasedOn(func(_ string) (string, bool) { return "", false })
	if err != nil {
		// only a single valued variable with several values fails here
		panic(fmt.Sprintf("Could not compute environment: %v", err))
	}
	return res
}
