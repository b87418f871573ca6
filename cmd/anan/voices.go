package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"anan/internal/tts"
)

func newVoicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List available TTS voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, name := range tts.ListVoices() {
				v, _ := tts.GetVoice(name)
				marker := " "
				if name == cfg.Backend.Voice {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-8s %-7s %s\n", marker, v.Name, v.Gender, v.Description)
			}
			return nil
		},
	}
}
