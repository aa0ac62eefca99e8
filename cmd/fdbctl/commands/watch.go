package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/fdb-go/cmd/fdbctl/cmdutil"
	"github.com/marmos91/fdb-go/pkg/fdb"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <key>",
	Short: "Block until a key's value changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	db, err := cmdutil.OpenDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	key := []byte(args[0])

	result, err := db.Write(cmd.Context(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return txn.Watch(key)
	})
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	watch := result.(*fdb.Watch)
	fmt.Printf("watching %q, waiting for change...\n", args[0])

	if err := watch.Await(cmd.Context()); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	fmt.Printf("%q changed\n", args[0])
	return nil
}
