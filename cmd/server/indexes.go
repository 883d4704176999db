package main

import (
	"fmt"

	"weeklygrind/plan-tracker/internal/config"

	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes and exit",
	Long: `Create every MongoDB index the tracker relies on, including the unique
indexes that keep one in-progress completion per day and one user plan per
user. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver != config.DriverMongo {
			fmt.Fprintf(cmd.OutOrStdout(), "driver %q has no indexes\n", cfg.Database.Driver)
			return nil
		}
		_, closeRepos, err := openRepositories(cmd.Context(), cfg.Database, true)
		if err != nil {
			return err
		}
		closeRepos()
		fmt.Fprintln(cmd.OutOrStdout(), "indexes ensured")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}
