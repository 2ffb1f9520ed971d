// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/daemang7/inspecsync/inspecsync"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List inspections waiting in the durable pending collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		pending := client.PendingInspections(cmd.Context())
		if len(pending) == 0 {
			fmt.Println("No pending inspections.")
			return nil
		}
		for _, env := range pending {
			var rec inspecsync.InspectionRecord
			label := "(unparseable payload)"
			if err := json.Unmarshal(env.Data, &rec); err == nil {
				label = fmt.Sprintf("%s at %s by %s", rec.ExtinguisherID, rec.Location, rec.InspectedBy)
			}
			fmt.Printf("%s  %s  %s\n", env.ID, formatMillis(env.Timestamp), label)
		}
		return nil
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List requests waiting in the durable sync queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		queue := client.SyncQueue(cmd.Context())
		if len(queue) == 0 {
			fmt.Println("Sync queue is empty.")
			return nil
		}
		for _, item := range queue {
			fmt.Printf("%s  %s  POST %s  (%d bytes)\n",
				item.ID, formatMillis(item.Timestamp), item.Endpoint, len(item.Data))
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard all locally queued offline data",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to clear queued data without --yes")
		}
		client.ClearOfflineData(cmd.Context())
		fmt.Println("Cleared all offline data.")
		return nil
	},
}

var inspectionsCmd = &cobra.Command{
	Use:   "inspections",
	Short: "Fetch the inspection list from the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := client.FetchInspections(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch inspections: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No inspections on server.")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%-12s  %-20s  %-10s  %s  %s\n",
				rec.ExtinguisherID, rec.Location, rec.Condition, rec.Date, rec.InspectedBy)
		}
		return nil
	},
}

func init() {
	clearCmd.Flags().Bool("yes", false, "confirm discarding queued data")
	rootCmd.AddCommand(pendingCmd, queueCmd, clearCmd, inspectionsCmd)
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format(time.RFC3339)
}
