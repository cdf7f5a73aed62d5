package config_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ActiveState/devenv/internal/config"
	"github.com/ActiveState/devenv/internal/errs"
)

type ConfigTestSuite struct {
	suite.Suite
	dir    string
	config *config.Instance
}

func (suite *ConfigTestSuite) BeforeTest(suiteName, testName string) {
	var err error
	suite.dir = suite.T().TempDir()
	suite.config, err = config.NewCustom(suite.dir)
	suite.Require().NoError(err)
}

func (suite *ConfigTestSuite) AfterTest(suiteName, testName string) {
	suite.Require().NoError(suite.config.Close())
}

func (suite *ConfigTestSuite) TestConfigPath() {
	suite.Equal(suite.dir, suite.config.ConfigPath())
}

func (suite *ConfigTestSuite) TestDefaults() {
	suite.False(suite.config.IsSet(config.ParallelismKey))
	suite.Equal(0, suite.config.GetInt(config.ParallelismKey))
	suite.Equal("normal", suite.config.GetString(config.LogLevelKey))
	suite.False(suite.config.GetBool(config.InheritKey))
	suite.Empty(suite.config.GetStringSlice(config.StoresKey))
}

func (suite *ConfigTestSuite) TestSetAndGet() {
	suite.Require().NoError(suite.config.Set(config.ParallelismKey, "4"))
	suite.Equal(4, suite.config.GetInt(config.ParallelismKey))

	suite.Require().NoError(suite.config.Set(config.StoresKey, []string{"/opt/store", "/usr/local/store"}))
	suite.Equal([]string{"/opt/store", "/usr/local/store"}, suite.config.GetStringSlice(config.StoresKey))

	suite.Require().NoError(suite.config.Set(config.InheritKey, "true"))
	suite.True(suite.config.GetBool(config.InheritKey))

	suite.Equal([]string{config.InheritKey, config.ParallelismKey, config.StoresKey}, suite.config.AllKeys())
}

func (suite *ConfigTestSuite) TestInvalidValues() {
	err := suite.config.Set(config.ParallelismKey, "many")
	suite.Error(err)

	err = suite.config.Set(config.InheritKey, "sometimes")
	suite.Error(err)
	suite.False(suite.config.IsSet(config.InheritKey))

	err = suite.config.Set(config.LogLevelKey, "chatty")
	suite.Error(err)
	suite.False(suite.config.IsSet(config.LogLevelKey))
}

func (suite *ConfigTestSuite) TestGetThenSet() {
	suite.Require().NoError(suite.config.Set(config.ParallelismKey, 2))
	err := suite.config.GetThenSet(config.ParallelismKey, func(current interface{}) (interface{}, error) {
		return current.(int) * 2, nil
	})
	suite.Require().NoError(err)
	suite.Equal(4, suite.config.GetInt(config.ParallelismKey))

	err = suite.config.GetThenSet(config.ParallelismKey, func(current interface{}) (interface{}, error) {
		return config.CancelSet, nil
	})
	suite.Require().NoError(err)
	suite.Equal(4, suite.config.GetInt(config.ParallelismKey))

	err = suite.config.GetThenSet(config.ParallelismKey, func(current interface{}) (interface{}, error) {
		return nil, errs.New("nope")
	})
	suite.Error(err)
}

func (suite *ConfigTestSuite) TestPersists() {
	suite.Require().NoError(suite.config.Set(config.LogLevelKey, "debug"))
	suite.Require().NoError(suite.config.Close())

	reopened, err := config.NewCustom(suite.dir)
	suite.Require().NoError(err)
	defer reopened.Close()
	suite.Equal("debug", reopened.GetString(config.LogLevelKey))
}

func (suite *ConfigTestSuite) TestKeys() {
	suite.Equal([]string{config.InheritKey, config.ParallelismKey, config.LogLevelKey, config.StoresKey}, config.Keys())
	for _, key := range config.Keys() {
		suite.True(config.KnownKey(key))
	}
	suite.False(config.KnownKey("some.flag"))
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
