package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func bindFlags() error {
	return bindFlagSet(rootCmd.Flags())
}

func bindFlagSet(flags *pflag.FlagSet) error {
	flags.Bool("allow-other", false, "allow users other than the mount owner to access the filesystem")
	flags.Bool("read-only", false, "reject mutating requests at the kernel mount level")
	flags.String("fs-name", "memfs", "source name shown in the host mount table")
	flags.String("subtype", "", "filesystem subtype shown in the host mount table (defaults to memfs)")
	flags.Bool("debug", false, "log FUSE protocol traffic")
	flags.String("metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9981 (disabled if empty)")

	for _, name := range []string{"allow-other", "read-only", "fs-name", "subtype", "debug", "metrics-addr"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}
