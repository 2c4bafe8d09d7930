// Package config registers every setting segrab understands and loads them
// from defaults, the TOML config file and SEGRAB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/segrab-cli/segrab/constant"
	"github.com/segrab-cli/segrab/filesystem"
	"github.com/segrab-cli/segrab/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps config keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup loads defaults, binds environment variables and reads the config file if there is one.
func Setup() error {
	viper.SetFs(filesystem.API())
	viper.SetConfigName(constant.Segrab)
	viper.SetConfigType("toml")
	viper.AddConfigPath(where.Config())

	viper.SetTypeByDefaultValue(true)
	for _, name := range EnvExposed {
		field := Default[name]
		viper.SetDefault(name, field.Value)
		if err := viper.BindEnv(name, field.Env()); err != nil {
			return fmt.Errorf("bind %s: %w", field.Env(), err)
		}
	}

	err := viper.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("read config: %w", err)
	}

	return nil
}
