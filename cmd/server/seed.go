package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"weeklygrind/plan-tracker/internal/config"
	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/service"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed-library <file.json>",
	Short: "Load exercise library entries from a JSON file",
	Long: `Load exercise library entries from a JSON array. Entries are matched by
name, so re-running the seed replaces entries instead of duplicating them.

EXAMPLE FILE:

  [
    {"name": "Goblet Squat", "category": "legs", "equipment": "Kettlebell", "muscle_group": "quads"},
    {"name": "Band Pull-Apart", "category": "upper", "equipment": "Resistance Band", "muscle_group": "rear delts"}
  ]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver == config.DriverMemory {
			return errors.New("seeding the in-memory store has no lasting effect")
		}
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open seed file: %w", err)
		}
		defer f.Close()

		repos, closeRepos, err := openRepositories(cmd.Context(), cfg.Database, true)
		if err != nil {
			return err
		}
		defer closeRepos()

		n, err := seedLibrary(cmd.Context(), service.NewLibraryService(repos.Library), f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d library exercises\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// seedEntry is the file format. Ids are assigned by the store.
type seedEntry struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Equipment   string `json:"equipment"`
	MuscleGroup string `json:"muscle_group"`
}

func seedLibrary(ctx context.Context, library service.LibraryService, r io.Reader) (int, error) {
	var entries []seedEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}
	exercises := make([]domain.LibraryExercise, len(entries))
	for i, e := range entries {
		exercises[i] = domain.LibraryExercise{
			Name:        e.Name,
			Category:    e.Category,
			Equipment:   e.Equipment,
			MuscleGroup: e.MuscleGroup,
		}
	}
	return library.Seed(ctx, exercises)
}
