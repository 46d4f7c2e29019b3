package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slidecast/internal/narration"
)

func newVoicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "voices",
		Short:       "List the production voices",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, voice := range narration.Voices() {
				fmt.Fprintln(out, voice)
			}
			return nil
		},
	}
}
