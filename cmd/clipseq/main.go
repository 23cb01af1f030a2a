// Package main is the entry point for the clipseq command line tool.
//
// Usage:
//
//	clipseq [flags] <command> [subcommand] [args]
//
// Commands:
//
//	play      - Play a scene or clips of a song on MIDI outputs
//	render    - Play a song offline and write a MIDI file or a report
//	audition  - Preview a pattern, transform, clip or clip slot
//	list      - List the entities of a song
//	ports     - List MIDI output ports
//	takes     - Manage recorded takes (list, show, export, delete)
package main

import (
	"fmt"
	"os"

	"github.com/vsariola/clipseq/cmd/clipseq/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
