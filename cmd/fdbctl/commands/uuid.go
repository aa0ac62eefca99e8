package commands

import (
	"fmt"

	"github.com/marmos91/fdb-go/pkg/fdb/fdbuuid"
	"github.com/spf13/cobra"
)

var uuidFormat string

var uuidCmd = &cobra.Command{
	Use:   "uuid",
	Short: "Generate and format UUIDs",
}

var uuidNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new UUID128",
	RunE:  runUUIDNew,
}

func init() {
	uuidNewCmd.Flags().StringVar(&uuidFormat, "format", "D", "output format: D (dashed), N (no dashes), B (braced), X (C struct literal)")
	uuidCmd.AddCommand(uuidNewCmd)
	rootCmd.AddCommand(uuidCmd)
}

func runUUIDNew(cmd *cobra.Command, args []string) error {
	u := fdbuuid.NewUuid128()
	fmt.Println(u.Format(uuidFormat))
	return nil
}
