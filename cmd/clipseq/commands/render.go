package commands

import (
	"github.com/spf13/cobra"

	"github.com/vsariola/clipseq/engine"
)

var (
	renderSession session
	renderScene   string
	renderClips   []string
)

var renderCmd = &cobra.Command{
	Use:   "render <song.yml>",
	Short: "Play a song offline into a MIDI file, a report or a take",
	Long: `Play a scene or clips on a virtual clock as fast as possible and write
the result. Without --bars, rendering stops when every clip has ended or after
64 bars.

Examples:
  clipseq render song.yml --scene verse --bars 8 -o verse.mid
  clipseq render song.yml --report --template events.tmpl`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderSession.offline = true
	renderSession.register(renderCmd.Flags(), false)
	renderCmd.Flags().StringVarP(&renderScene, "scene", "s", "", "scene to launch")
	renderCmd.Flags().StringSliceVarP(&renderClips, "clip", "c", nil, "clips to launch instead of a scene")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	song, err := loadSong(args[0])
	if err != nil {
		return err
	}
	scene, err := pickScene(song, renderScene, renderClips)
	if err != nil {
		return err
	}
	if !renderSession.needsRecording() {
		renderSession.report = true
	}
	return renderSession.run(cmd.Context(), song, scene, func(p *engine.MultiPlayer) error {
		return launch(p, scene, renderClips)
	})
}
