package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresMountPoint(t *testing.T) {
	v := viper.New()
	_, err := Load(v)
	assert.Error(t, err)
}

func TestLoadDefaultsFSName(t *testing.T) {
	v := viper.New()
	v.Set("mount-point", "/tmp/mnt")
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "memfs", cfg.FSName)
}

func TestMountOptionsTranslation(t *testing.T) {
	v := viper.New()
	v.Set("mount-point", "/tmp/mnt")
	v.Set("allow-other", true)
	v.Set("read-only", true)
	v.Set("subtype", "custom")
	cfg, err := Load(v)
	require.NoError(t, err)

	opts := cfg.MountOptions()
	assert.True(t, opts.AllowOther)
	assert.True(t, opts.ReadOnly)
	assert.Equal(t, "custom", opts.Subtype)
}
