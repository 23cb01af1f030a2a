package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vsariola/clipseq"
)

var (
	headStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	idStyle   = lipgloss.NewStyle().Bold(true).PaddingLeft(2)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

var listCmd = &cobra.Command{
	Use:   "list <song.yml>",
	Short: "List the entities of a song",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := loadSong(args[0])
		if err != nil {
			return err
		}
		return listSong(os.Stdout, song)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type row struct{ id, desc string }

func listSong(w io.Writer, song *clipseq.Song) error {
	beats := song.BarTicks() / clipseq.TicksPerBeat
	fmt.Fprintln(w, headStyle.Render(song.Name)+dimStyle.Render(fmt.Sprintf(" %g bpm, %d beats per bar", song.BPM, beats)))

	var rows []row
	for _, i := range song.Instruments() {
		desc := fmt.Sprintf("%s ch%d", i.Device, i.Channel)
		if i.Muted {
			desc += " muted"
		}
		rows = append(rows, row{string(i.ID), desc})
	}
	section(w, "Instruments", rows)

	rows = rows[:0]
	for _, p := range song.Patterns() {
		rows = append(rows, row{string(p.ID), fmt.Sprintf("%d tokens at %g/beat", p.Len(), p.TokenRate())})
	}
	section(w, "Patterns", rows)

	rows = rows[:0]
	for _, t := range song.Transforms() {
		rows = append(rows, row{string(t.ID), t.Kind.String()})
	}
	section(w, "Transforms", rows)

	rows = rows[:0]
	for _, t := range song.Tracks() {
		rows = append(rows, row{string(t.ID), joinIDs(t.Instruments)})
	}
	section(w, "Tracks", rows)

	rows = rows[:0]
	for _, c := range song.Clips() {
		repeat := "forever"
		if !c.Infinite() {
			repeat = fmt.Sprintf("%dx", c.Repeat)
		}
		rows = append(rows, row{string(c.ID), fmt.Sprintf("track %s, %d slots, %s", c.Track, c.NumSlots(), repeat)})
	}
	section(w, "Clips", rows)

	rows = rows[:0]
	for _, s := range song.Scenes() {
		desc := joinIDs(s.Clips)
		if s.Tempo > 0 {
			desc += fmt.Sprintf(" @ %g bpm", s.Tempo)
		}
		rows = append(rows, row{string(s.ID), desc})
	}
	section(w, "Scenes", rows)
	return nil
}

func section(w io.Writer, title string, rows []row) {
	if len(rows) == 0 {
		return
	}
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.id))
	}
	fmt.Fprintln(w, headStyle.Render(title))
	for _, r := range rows {
		fmt.Fprintln(w, idStyle.Width(width+4).Render(r.id)+dimStyle.Render(r.desc))
	}
}

func joinIDs[K ~string](ids []K) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = string(id)
	}
	return strings.Join(s, ", ")
}
