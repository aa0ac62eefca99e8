package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/fdb-go/cmd/fdbctl/cmdutil"
	"github.com/marmos91/fdb-go/pkg/fdb"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a single key",
	Args:  cobra.ExactArgs(2),
	RunE:  runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	db, err := cmdutil.OpenDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	key, value := []byte(args[0]), []byte(args[1])

	_, err = db.Write(cmd.Context(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return nil, txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("set failed: %w", err)
	}

	fmt.Printf("set %q\n", args[0])
	return nil
}

var clearCmd = &cobra.Command{
	Use:   "clear <key>",
	Short: "Delete a single key",
	Args:  cobra.ExactArgs(1),
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	db, err := cmdutil.OpenDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	key := []byte(args[0])

	_, err = db.Write(cmd.Context(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return nil, txn.Clear(key)
	})
	if err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	fmt.Printf("cleared %q\n", args[0])
	return nil
}
