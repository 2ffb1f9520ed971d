// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/daemang7/inspecsync/inspecsync"
)

var (
	cfgFile string
	client  *inspecsync.Client
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "inspecsync",
	Short: "Offline-resilient equipment inspection client",
	Long: `inspecsync submits equipment inspections to a configured server and keeps
them safe in durable local queues while the server is unreachable. Queued
records replay exactly once each when connectivity returns.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if client != nil {
			client.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.inspecsync.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for durable offline storage")
	rootCmd.PersistentFlags().String("host", "", "server IPv4 address")
	rootCmd.PersistentFlags().Bool("offline", false, "force offline mode for this invocation")
	rootCmd.PersistentFlags().Bool("require-pressure", false, "require a pressure reading before queueing")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "network request timeout")

	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("require_pressure", rootCmd.PersistentFlags().Lookup("require-pressure"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.SetEnvPrefix("INSPECSYNC")
	viper.AutomaticEnv()
}

func setup(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".inspecsync")
			viper.SetConfigType("yaml")
		}
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	dataDir := viper.GetString("data_dir")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".inspecsync")
	}

	logger = newLogger(dataDir)

	cfg := inspecsync.DefaultConfig(dataDir)
	cfg.RequirePressure = viper.GetBool("require_pressure")
	if d := viper.GetDuration("timeout"); d > 0 {
		cfg.RequestTimeout = d
	}

	client = inspecsync.New(cfg, logger)
	client.SetNotifier(consoleNotifier{})

	if host := viper.GetString("host"); host != "" {
		if err := client.State.SetAPIHost(host); err != nil {
			return fmt.Errorf("server address %q: %w", host, err)
		}
	}
	if forced, _ := cmd.Flags().GetBool("offline"); forced {
		client.Monitor.SetForcedOffline(true)
	}
	return nil
}

// newLogger writes structured logs to a rotated file under dataDir so CLI
// output stays clean for humans.
func newLogger(dataDir string) *slog.Logger {
	w := &lumberjack.Logger{
		Filename:   filepath.Join(dataDir, "inspecsync.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// consoleNotifier prints toast-style notifications to stdout.
type consoleNotifier struct{}

func (consoleNotifier) Notify(n inspecsync.Notification) {
	prefix := "INFO"
	switch n.Level {
	case inspecsync.LevelSuccess:
		prefix = "OK"
	case inspecsync.LevelWarning:
		prefix = "WARN"
	case inspecsync.LevelError:
		prefix = "ERROR"
	}
	fmt.Printf("[%s] %s: %s\n", prefix, n.Title, n.Message)
}
