package config

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
	_ "modernc.org/sqlite"

	C "github.com/ActiveState/devenv/internal/constants"
	"github.com/ActiveState/devenv/internal/errs"
	"github.com/ActiveState/devenv/internal/fileutils"
	"github.com/ActiveState/devenv/internal/logging"
)

// Instance holds our main config logic
type Instance struct {
	appDataDir string
	db         *sql.DB
	mutex      sync.Mutex
	closed     bool
}

// New opens the config stored in the default app data dir, or the dir named by DEVENV_CONFIG_DIR
func New() (*Instance, error) {
	dir := os.Getenv(C.ConfigEnvVarName)
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, errs.Wrap(err, "Could not detect appdata dir")
		}
		dir = filepath.Join(base, C.InternalConfigNamespace, C.LibraryName)
	}
	return NewCustom(dir)
}

// NewCustom is intended only to be used from tests or internally to this package
func NewCustom(appDataDir string) (*Instance, error) {
	i := &Instance{appDataDir: appDataDir}

	// Ensure appdata dir exists, because the sqlite driver sure doesn't
	if err := fileutils.MkdirUnlessExists(i.appDataDir); err != nil {
		return nil, errs.Wrap(err, "Could not create config dir")
	}

	// Two processes seeding the same database at once can trip over each other
	lock := flock.New(filepath.Join(i.appDataDir, C.InternalConfigFileName+".lock"))
	if err := lock.Lock(); err != nil {
		return nil, errs.Wrap(err, "Could not lock config dir")
	}
	defer lock.Unlock()

	path := filepath.Join(i.appDataDir, C.InternalConfigFileName)
	var err error
	i.db, err = sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap(err, "Could not create sqlite connection to %s", path)
	}

	_, err = i.db.Exec(`CREATE TABLE IF NOT EXISTS config (key string NOT NULL PRIMARY KEY, value text)`)
	if err != nil {
		i.db.Close()
		return nil, errs.Wrap(err, "Could not seed settings database")
	}

	return i, nil
}

func (i *Instance) Close() error {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true
	return i.db.Close()
}

// GetThenSet updates a value at the given key. The valueF argument returns the
// new value to set based on the previous one. If the function returns with an error, the
// update is cancelled.
func (i *Instance) GetThenSet(key string, valueF func(currentValue interface{}) (interface{}, error)) error {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return i.setWithCallback(key, valueF)
}

const CancelSet = "__CANCEL__"

func (i *Instance) setWithCallback(key string, valueF func(currentValue interface{}) (interface{}, error)) error {
	v, err := valueF(i.get(key))
	if err != nil {
		return errs.Wrap(err, "valueF failed")
	}

	if v == CancelSet {
		return nil
	}

	// Cast to rule type if applicable
	rule := GetRule(key)
	switch rule.Type {
	case Bool:
		v, err = cast.ToBoolE(v)
		if err != nil {
			return errs.Wrap(err, "Value for %s must be true or false", key)
		}
	case Int:
		v, err = cast.ToIntE(v)
		if err != nil {
			return errs.Wrap(err, "Value for %s must be a number", key)
		}
	case String, Enum:
		v = cast.ToString(v)
	case StringSlice:
		v = cast.ToStringSlice(v)
	}

	if err := rule.validate(key, v); err != nil {
		return err
	}

	q, err := i.db.Prepare(`INSERT OR REPLACE INTO config(key, value) VALUES(?,?)`)
	if err != nil {
		return errs.Wrap(err, "Could not modify settings")
	}
	defer q.Close()

	valueMarshaled, err := yaml.Marshal(v)
	if err != nil {
		return errs.Wrap(err, "Could not marshal config value: %v", v)
	}

	_, err = q.Exec(key, string(valueMarshaled))
	if err != nil {
		return errs.Wrap(err, "Could not store setting")
	}

	return nil
}

// Set sets a value at the given key.
func (i *Instance) Set(key string, value interface{}) error {
	return i.GetThenSet(key, func(_ interface{}) (interface{}, error) {
		return value, nil
	})
}

// IsSet returns whether a value was stored for the key, defaults do not count
func (i *Instance) IsSet(key string) bool {
	return i.get(key) != nil
}

// Get returns the stored value for the key, or the rule default when nothing is stored
func (i *Instance) Get(key string) interface{} {
	if v := i.get(key); v != nil {
		return v
	}
	return GetRule(key).Default
}

func (i *Instance) get(key string) interface{} {
	row := i.db.QueryRow(`SELECT value FROM config WHERE key=?`, key)
	if row.Err() != nil {
		logging.Error("config:get query failed: %s", errs.JoinMessage(row.Err()))
		return nil
	}

	var value string
	if err := row.Scan(&value); err != nil {
		return nil // No results
	}

	var result interface{}
	if err := yaml.Unmarshal([]byte(value), &result); err != nil {
		if err2 := json.Unmarshal([]byte(value), &result); err2 != nil {
			logging.Error("config:get unmarshal failed: %s (json err: %s)", errs.JoinMessage(err), errs.JoinMessage(err2))
			return nil
		}
	}

	return result
}

// GetString retrieves a string for a given key
func (i *Instance) GetString(key string) string {
	return cast.ToString(i.Get(key))
}

// GetInt retrieves an int for a given key
func (i *Instance) GetInt(key string) int {
	return cast.ToInt(i.Get(key))
}

// GetBool retrieves a boolean value for a given key
func (i *Instance) GetBool(key string) bool {
	return cast.ToBool(i.Get(key))
}

// GetStringSlice retrieves a slice of strings for a given key
func (i *Instance) GetStringSlice(key string) []string {
	return cast.ToStringSlice(i.Get(key))
}

// AllKeys returns all of the curent config keys
func (i *Instance) AllKeys() []string {
	rows, err := i.db.Query(`SELECT key FROM config ORDER BY key`)
	if err != nil {
		logging.Error("config:AllKeys query failed: %s", errs.JoinMessage(err))
		return nil
	}
	var keys []string
	defer rows.Close()
	for rows.Next() {
		var key string
		rows.Scan(&key)
		keys = append(keys, key)
	}
	return keys
}

// ConfigPath returns the path at which our configuration is stored
func (i *Instance) ConfigPath() string {
	return i.appDataDir
}
