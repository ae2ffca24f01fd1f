package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/djenbridge/internal/model"
)

func courtsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courts",
		Short: "List supported courts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(model.Courts())
		},
	}
}
