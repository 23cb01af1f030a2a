package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vsariola/clipseq"
	"github.com/vsariola/clipseq/engine"
)

var (
	playSession session
	playScene   string
	playClips   []string
)

var playCmd = &cobra.Command{
	Use:   "play <song.yml>",
	Short: "Play a scene or clips on MIDI outputs",
	Long: `Play a scene (by default the first one) or a set of clips of a song.

Playback ends when every clip has played all its repeats. Interrupt once to
stop at the next tick, releasing every sounding note.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playSession.register(playCmd.Flags(), true)
	playCmd.Flags().StringVarP(&playScene, "scene", "s", "", "scene to launch")
	playCmd.Flags().StringSliceVarP(&playClips, "clip", "c", nil, "clips to launch instead of a scene")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	song, err := loadSong(args[0])
	if err != nil {
		return err
	}
	scene, err := pickScene(song, playScene, playClips)
	if err != nil {
		return err
	}
	return playSession.run(cmd.Context(), song, scene, func(p *engine.MultiPlayer) error {
		return launch(p, scene, playClips)
	})
}

// pickScene returns the scene to launch: the named one, or the first scene
// of the song when no clips are given either.
func pickScene(song *clipseq.Song, scene string, clips []string) (string, error) {
	if scene != "" || len(clips) > 0 {
		return scene, nil
	}
	scenes := song.Scenes()
	if len(scenes) == 0 {
		return "", errors.New("the song has no scenes, launch clips with --clip")
	}
	return string(scenes[0].ID), nil
}

func launch(p *engine.MultiPlayer, scene string, clips []string) error {
	if scene != "" {
		if err := p.AddScene(clipseq.SceneID(scene)); err != nil {
			return err
		}
	}
	if len(clips) > 0 {
		ids := make([]clipseq.ClipID, len(clips))
		for i, c := range clips {
			ids[i] = clipseq.ClipID(c)
		}
		return p.AddClips(ids...)
	}
	return nil
}
