// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daemang7/inspecsync/inspecsync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued records against the server now",
	RunE: func(cmd *cobra.Command, args []string) error {
		if client.Monitor.EffectiveOffline() {
			return fmt.Errorf("cannot sync while offline")
		}

		client.OnSyncStatus(func(s inspecsync.SyncStatus) {
			if s.IsSyncing && s.CurrentItem > 0 {
				fmt.Printf("  [%d/%d] %s\n", s.CurrentItem, s.TotalItems, s.Message)
			}
		})

		synced, failed := client.SyncNow(cmd.Context())
		fmt.Printf("Synced %d items, %d failed.\n", synced, failed)
		if failed > 0 {
			fmt.Println("Failed items remain queued and will be retried.")
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity and queue status",
	RunE: func(cmd *cobra.Command, args []string) error {
		host := client.State.APIHost()
		if host == "" {
			host = "(not configured)"
		}
		inspections, queued := client.OfflineCounts(cmd.Context())

		fmt.Printf("Server:              %s\n", host)
		fmt.Printf("Storage tier:        %s\n", client.Store.Name())
		fmt.Printf("Forced offline:      %v\n", client.Monitor.ForcedOffline())
		fmt.Printf("Effectively offline: %v\n", client.Monitor.EffectiveOffline())
		fmt.Printf("Pending inspections: %d\n", inspections)
		fmt.Printf("Sync queue:          %d\n", queued)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd, statusCmd)
}
