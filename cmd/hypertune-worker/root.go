package main

import "github.com/spf13/cobra"

var workerID string

var rootCmd = &cobra.Command{
	Use: "hypertune-worker",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&workerID, "id", "", "Worker assignment id. Overrides HYPERTUNE_WORKER_ID.")
}
