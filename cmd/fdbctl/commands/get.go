package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/fdb-go/cmd/fdbctl/cmdutil"
	"github.com/marmos91/fdb-go/internal/cli/output"
	"github.com/marmos91/fdb-go/pkg/fdb"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read a single key",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	db, err := cmdutil.OpenDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	key := []byte(args[0])

	v, err := db.Read(cmd.Context(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return txn.Get(ctx, key)
	})
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}

	value, _ := v.([]byte)
	if value == nil {
		fmt.Println("(not found)")
		return nil
	}
	fmt.Println(output.Escape(value))
	return nil
}
