package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	clipcmd "github.com/vsariola/clipseq/cmd"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		midi := clipcmd.NewMIDIContext(globalConfig.Routes, globalConfig.QueueLength)
		defer midi.Close()
		names := midi.OutputNames()
		if len(names) == 0 {
			fmt.Println(dimStyle.Render("no MIDI outputs"))
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		for device, prefix := range globalConfig.Routes {
			fmt.Println(dimStyle.Render(fmt.Sprintf("%s -> %s", device, prefix)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
