// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/daemang7/inspecsync/inspecsync"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an inspection record",
	Long: `Submit an inspection record to the configured server. When the server is
unreachable or offline mode is forced, the record is saved to the durable
local queues and replayed on the next reconnect.

Examples:
  inspecsync submit --extinguisher EXT1 --location Lobby --condition good \
      --inspector "A. Kim" --pressure 150psi
  inspecsync --offline submit --extinguisher EXT2 --location "2F Office" \
      --condition fair --inspector "A. Kim"`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().String("extinguisher", "", "extinguisher id (required)")
	submitCmd.Flags().String("location", "", "equipment location (required)")
	submitCmd.Flags().String("inspector", "", "inspector name (required)")
	submitCmd.Flags().String("condition", "good", "condition: excellent|good|fair|poor|needs-replacement")
	submitCmd.Flags().String("date", "", "inspection date, YYYY-MM-DD (default today)")
	submitCmd.Flags().String("pressure", "", "pressure reading")
	submitCmd.Flags().String("description", "", "free-form notes")
	submitCmd.Flags().String("photo", "", "photo reference URL")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	str := func(name string) string { v, _ := flags.GetString(name); return v }

	date := str("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	condition := inspecsync.Condition(str("condition"))
	if !condition.IsValid() {
		return fmt.Errorf("unknown condition %q", condition)
	}

	rec := inspecsync.InspectionRecord{
		ExtinguisherID: str("extinguisher"),
		Location:       str("location"),
		InspectedBy:    str("inspector"),
		Condition:      condition,
		Date:           date,
		Pressure:       str("pressure"),
		Description:    str("description"),
		PhotoURL:       str("photo"),
	}

	out := client.Submit(cmd.Context(), rec)
	switch out.Kind {
	case inspecsync.OutcomeSent:
		fmt.Println("Inspection sent to server.")
	case inspecsync.OutcomeSavedOffline:
		fmt.Printf("Saved locally as %s; will sync when online.\n", out.ID)
	case inspecsync.OutcomeRejected:
		return fmt.Errorf("missing required fields: %s", strings.Join(out.Missing, ", "))
	case inspecsync.OutcomeFailed:
		if out.ID != "" {
			fmt.Printf("Server returned %d; queued as %s for retry.\n", out.Status, out.ID)
		} else {
			return fmt.Errorf("server rejected the record with status %d", out.Status)
		}
	}
	return nil
}
