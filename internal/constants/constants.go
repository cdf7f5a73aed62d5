package constants

// LibraryName contains the main name of this library
const LibraryName = "devenv"

// CommandName holds the name of our command
const CommandName = "devenv"

// InternalConfigNamespace holds the appdata folder name under which we store our config
const InternalConfigNamespace = "activestate"

// InternalConfigFileName is the name of the sqlite database that holds our persisted settings
const InternalConfigFileName = "devenv.db"

// ConfigEnvVarName is the env var used to override the config dir
const ConfigEnvVarName = "DEVENV_CONFIG_DIR"

// LogLevelEnvVarName is the env var used to override the configured log level
const LogLevelEnvVarName = "DEVENV_LOG_LEVEL"

// EnvironmentDefinitionFilename is the filename for runtime meta data bundled with installed artifacts
const EnvironmentDefinitionFilename = "runtime.json"

// InstallDirVariable is the substitution string that is replaced with the artifact directory in runtime.json values
const InstallDirVariable = "INSTALLDIR"
