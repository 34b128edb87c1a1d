package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/semtok/codebook"
)

var infoName string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show a stored codebook",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}

		cb, err := codebook.Load(cmd.Context(), store, infoName)
		if err != nil {
			return err
		}

		fmt.Printf("name:     %s\n", infoName)
		fmt.Printf("clusters: %d\n", cb.Clusters())
		fmt.Printf("dim:      %d\n", cb.Dim())

		return nil
	},
}

func init() {
	infoCmd.Flags().StringVar(&infoName, "name", "codebook.bin", "stored codebook name")
}
