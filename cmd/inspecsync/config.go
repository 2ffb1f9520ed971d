// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage client configuration",
}

var setHostCmd = &cobra.Command{
	Use:   "set-host <ipv4>",
	Short: "Set and persist the server address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validate through the client so a malformed address never reaches
		// the config file.
		if err := client.State.SetAPIHost(args[0]); err != nil {
			return fmt.Errorf("server address %q: %w", args[0], err)
		}

		viper.Set("host", client.State.APIHost())
		path := viper.ConfigFileUsed()
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home directory: %w", err)
			}
			path = filepath.Join(home, ".inspecsync.yaml")
		}
		if err := viper.WriteConfigAs(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Server address set to %s (saved to %s)\n", client.State.APIHost(), path)
		return nil
	},
}

var getHostCmd = &cobra.Command{
	Use:   "get-host",
	Short: "Print the configured server address",
	RunE: func(cmd *cobra.Command, args []string) error {
		host := client.State.APIHost()
		if host == "" {
			fmt.Println("Server address is not configured.")
			return nil
		}
		fmt.Println(host)
		return nil
	},
}

func init() {
	configCmd.AddCommand(setHostCmd, getHostCmd)
	rootCmd.AddCommand(configCmd)
}
