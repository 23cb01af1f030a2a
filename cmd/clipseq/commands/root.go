package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsariola/clipseq"
	"github.com/vsariola/clipseq/cmd/clipseq/internal/config"
	"github.com/vsariola/clipseq/version"
)

var (
	// Global flags
	verbose    bool
	configPath string

	globalConfig *config.Config
	logger       = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "clipseq",
	Short: "Clip sequencer for MIDI instruments",
	Long: `clipseq - play songs made of patterns, clips and scenes on MIDI outputs.

A song is a YAML document of scales, instruments, data pools, patterns,
transforms, tracks, clips and scenes. Instruments are routed to MIDI output
ports by device name; routes can be configured in ~/.clipseq/config.yaml:

  routes:
    synth: "Midi Through"
  takes_dir: ~/.clipseq/takes
  log_level: info

Examples:
  # Play the first scene of a song
  clipseq play song.yml

  # Render a scene offline to a MIDI file
  clipseq render song.yml --scene verse --bars 8 -o verse.mid

  # Preview a transform
  clipseq audition transform song.yml arp`,
	Version:           version.VersionOrHash,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.clipseq/config.yaml)")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	globalConfig = cfg
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func loadSong(path string) (*clipseq.Song, error) {
	song, err := clipseq.LoadSong(path)
	if err != nil {
		return nil, fmt.Errorf("could not load song %v: %w", path, err)
	}
	return song, nil
}
