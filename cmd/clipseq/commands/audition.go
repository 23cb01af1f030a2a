package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vsariola/clipseq"
	"github.com/vsariola/clipseq/engine"
)

var auditionSession session

var auditionCmd = &cobra.Command{
	Use:   "audition",
	Short: "Preview a pattern, transform, clip or clip slot",
	Long: `Play a single part of a song once, on its own hidden track.

Patterns play on their audition instrument, or the first instrument of the
song. Transforms play their audition pattern through the transform.`,
}

func init() {
	auditionSession.register(auditionCmd.PersistentFlags(), true)

	auditionCmd.AddCommand(
		auditionCommand("pattern <song.yml> <pattern>", "Preview a pattern", 2, func(p *engine.MultiPlayer, args []string) error {
			return p.AuditionPattern(clipseq.PatternID(args[0]))
		}),
		auditionCommand("transform <song.yml> <transform>", "Preview a transform", 2, func(p *engine.MultiPlayer, args []string) error {
			return p.AuditionTransform(clipseq.TransformID(args[0]))
		}),
		auditionCommand("clip <song.yml> <clip>", "Play every slot of a clip once", 2, func(p *engine.MultiPlayer, args []string) error {
			return p.AuditionClip(clipseq.ClipID(args[0]))
		}),
		auditionCommand("slot <song.yml> <clip> <slot>", "Play one slot of a clip", 3, func(p *engine.MultiPlayer, args []string) error {
			slot, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid slot %q: %w", args[1], err)
			}
			return p.AuditionClipSlot(clipseq.ClipID(args[0]), slot)
		}),
	)
	rootCmd.AddCommand(auditionCmd)
}

func auditionCommand(use, short string, nargs int, start func(p *engine.MultiPlayer, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			song, err := loadSong(args[0])
			if err != nil {
				return err
			}
			return auditionSession.run(cmd.Context(), song, "", func(p *engine.MultiPlayer) error {
				return start(p, args[1:])
			})
		},
	}
}
