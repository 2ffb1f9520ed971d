// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Command inspecsync is a terminal front end for the offline-resilient
// inspection client: submit inspections, inspect the offline queues, force
// offline mode and trigger replays against a configured server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
