package profz

import (
	"strings"

	"github.com/spf13/viper"
)

// Environment binding: GP_FILENAME_PREFIX.
const (
	envPrefix         = "GP"
	keyFilenamePrefix = "filename_prefix"
)

// Config holds the external settings that switch profiling on.
type Config struct {
	// FilenamePrefix prefixes the dump file name. Empty disables profiling.
	FilenamePrefix string
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	_ = v.BindEnv(keyFilenamePrefix) //nolint:errcheck // only fails without a key
	return ConfigFromViper(v)
}

// ConfigFromViper extracts the configuration from a host application's viper
// instance, keyed by "filename_prefix".
func ConfigFromViper(v *viper.Viper) Config {
	return Config{
		FilenamePrefix: v.GetString(keyFilenamePrefix),
	}
}

// Enabled reports whether profiling is on.
func (c Config) Enabled() bool {
	return c.FilenamePrefix != ""
}

// Filename computes the dump file for a process:
// <prefix>_<lower_snake_case(process)>.json.
func (c Config) Filename(process string) string {
	if !c.Enabled() {
		return ""
	}
	return c.FilenamePrefix + "_" + toLowerSnakeCase(process) + ".json"
}

func toLowerSnakeCase(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "_")
}
