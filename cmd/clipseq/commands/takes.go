package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsariola/clipseq/takes"
)

var takesTemplate string

var takesCmd = &cobra.Command{
	Use:   "takes",
	Short: "Manage recorded takes",
	Long: `Takes are recordings saved with --save by play, render and audition.
They are stored in the takes directory, ~/.clipseq/takes unless configured
otherwise.`,
}

var takesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List takes, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTakes(func(store takes.Store) error {
			for t, err := range store.List(cmd.Context()) {
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s  %-16s %s\n",
					idStyle.Render(t.ID),
					t.Created.Local().Format(time.DateTime),
					t.Song,
					dimStyle.Render(fmt.Sprintf("%s %d events", t.Scene, len(t.Recording.Events))))
			}
			return nil
		})
	},
}

var takesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a report of a take",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTakes(func(store takes.Store) error {
			t, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("could not get take %v: %w", args[0], err)
			}
			return printReport(takesTemplate, t.Song, t.BeatsPerBar, &t.Recording)
		})
	},
}

var takesExportCmd = &cobra.Command{
	Use:   "export <id> <file.mid>",
	Short: "Write a take to a standard MIDI file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTakes(func(store takes.Store) error {
			t, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("could not get take %v: %w", args[0], err)
			}
			return writeSMF(args[1], &t.Recording, t.BeatsPerBar)
		})
	},
}

var takesDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete takes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTakes(func(store takes.Store) error {
			for _, id := range args {
				if err := store.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("could not delete take %v: %w", id, err)
				}
			}
			return nil
		})
	},
}

func init() {
	takesShowCmd.Flags().StringVar(&takesTemplate, "template", "", "template file for the report")
	takesCmd.AddCommand(takesListCmd, takesShowCmd, takesExportCmd, takesDeleteCmd)
	rootCmd.AddCommand(takesCmd)
}

func withTakes(f func(store takes.Store) error) error {
	store, err := openTakes()
	if err != nil {
		return err
	}
	defer store.Close()
	return f(store)
}
