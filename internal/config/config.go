// Package config binds memfsd's mount options from flags, a config file
// and MEMFSD_* environment variables, the way gcsfuse's cfg package
// binds its Viper-backed Config struct.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/augustgoad/memfs/mount"
)

// Config is the bindable configuration surface for the memfsd command.
type Config struct {
	MountPoint string `mapstructure:"mount-point"`
	Seed       string `mapstructure:"seed"`
	AllowOther bool   `mapstructure:"allow-other"`
	ReadOnly   bool   `mapstructure:"read-only"`
	FSName     string `mapstructure:"fs-name"`
	Subtype    string `mapstructure:"subtype"`
	Debug      bool   `mapstructure:"debug"`
	MetricsAddr string `mapstructure:"metrics-addr"`
}

// Load reads bound Viper values into a Config, failing if mount-point is
// unset. An empty fs-name defaults to "memfs"; fs-name and subtype are
// not otherwise validated.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if c.MountPoint == "" {
		return Config{}, fmt.Errorf("mount-point is required")
	}
	if c.FSName == "" {
		c.FSName = "memfs"
	}
	return c, nil
}

// MountOptions converts Config into the engine's mount.Options.
func (c Config) MountOptions() mount.Options {
	return mount.Options{
		AllowOther: c.AllowOther,
		ReadOnly:   c.ReadOnly,
		FSName:     c.FSName,
		Subtype:    c.Subtype,
		Debug:      c.Debug,
	}
}
