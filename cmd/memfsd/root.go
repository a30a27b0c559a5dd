package main

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/augustgoad/memfs"
	"github.com/augustgoad/memfs/internal/config"
	"github.com/augustgoad/memfs/internal/metrics"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "memfsd mount-point [seed-dir]",
	Short: "Mount an in-memory filesystem as a host FUSE mount",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  run,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	if err := bindFlags(); err != nil {
		rootCmd.PrintErrln(err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "reading config file: %v\n", err)
			os.Exit(1)
		}
	}
	viper.SetEnvPrefix("memfsd")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	viper.Set("mount-point", args[0])
	if len(args) == 2 {
		viper.Set("seed", args[1])
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	sessionID := uuid.New()
	logOutput := io.Discard
	if cfg.Debug {
		logOutput = os.Stderr
	}
	logger := log.New(logOutput, fmt.Sprintf("memfsd[%s] ", sessionID.String()[:8]), log.LstdFlags|log.Lmicroseconds)

	fsys := memfs.New()
	if cfg.Seed != "" {
		if err := seedFromDisk(fsys, cfg.Seed); err != nil {
			return fmt.Errorf("seeding from %s: %w", cfg.Seed, err)
		}
		logger.Printf("seeded tree from %s", cfg.Seed)
	}

	reg := metrics.New()
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("metrics server: %v", err)
			}
		}()
		logger.Printf("serving metrics on %s/metrics", cfg.MetricsAddr)
	}

	opts := cfg.MountOptions()
	opts.Logger = logger
	opts.Metrics = reg

	mh, err := fsys.Mount(cfg.MountPoint, opts)
	if err != nil {
		return fmt.Errorf("mount %s: %w", cfg.MountPoint, err)
	}
	logger.Printf("mounted %s at %s", sessionID, mh.MountPoint())

	if cfg.MetricsAddr != "" {
		go pollGauges(fsys, reg, mh)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigc
		logger.Printf("received %v, unmounting", sig)
		if err := mh.Unmount(); err != nil {
			logger.Printf("unmount: %v", err)
		}
	}()

	mh.Wait()

	if metricsServer != nil {
		_ = metricsServer.Close()
	}
	return nil
}

// pollGauges refreshes the node-count and open-handle gauges every
// second until mh is unmounted, since the tree doesn't push metrics
// updates itself.
func pollGauges(fsys *memfs.FS, reg *metrics.Registry, mh *memfs.MountHandle) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		if !mh.IsMounted() {
			return
		}
		t := fsys.Tree()
		reg.NodeCount.Set(float64(t.NodeCount()))
		reg.OpenHandles.Set(float64(t.OpenHandleCount()))
	}
}

// seedFromDisk recursively imports dir's contents into fsys, preserving
// relative paths, regular file contents, symlink targets and directory
// structure. Device files, sockets and other non-regular entries are
// skipped.
func seedFromDisk(fsys *memfs.FS, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := "/" + filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.Type()&os.ModeSymlink != 0:
			linkTarget, err := os.Readlink(path)
			if err != nil {
				return err
			}
			_, err = fsys.Symlink(linkTarget, target)
			return err
		case d.IsDir():
			_, err = fsys.CreateDirMode(target, uint32(info.Mode().Perm()))
			return err
		case d.Type().IsRegular():
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			_, err = fsys.CreateFileMode(target, data, uint32(info.Mode().Perm()))
			return err
		default:
			return nil
		}
	})
}
