package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/fdb-go/cmd/fdbctl/cmdutil"
	"github.com/marmos91/fdb-go/internal/cli/output"
	"github.com/marmos91/fdb-go/pkg/fdb"
	"github.com/spf13/cobra"
)

var selectorKind string

var selectorCmd = &cobra.Command{
	Use:   "selector <key> <offset>",
	Short: "Resolve a key selector against the current snapshot",
	Args:  cobra.ExactArgs(2),
	RunE:  runSelector,
}

func init() {
	selectorCmd.Flags().StringVar(&selectorKind, "kind", "greater-or-equal",
		"selector anchor: greater-or-equal|greater-than|less-or-equal|less-than")
	rootCmd.AddCommand(selectorCmd)
}

func runSelector(cmd *cobra.Command, args []string) error {
	key := []byte(args[0])
	var offset int
	if _, err := fmt.Sscanf(args[1], "%d", &offset); err != nil {
		return fmt.Errorf("invalid offset %q: %w", args[1], err)
	}

	var ks fdb.KeySelector
	switch selectorKind {
	case "greater-or-equal":
		ks = fdb.FirstGreaterOrEqual(key)
	case "greater-than":
		ks = fdb.FirstGreaterThan(key)
	case "less-or-equal":
		ks = fdb.LastLessOrEqual(key)
	case "less-than":
		ks = fdb.LastLessThan(key)
	default:
		return fmt.Errorf("unknown selector kind %q", selectorKind)
	}
	ks.Offset += int32(offset)

	db, err := cmdutil.OpenDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	result, err := db.Read(cmd.Context(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return txn.ResolveKeySelector(ctx, ks)
	})
	if err != nil {
		return fmt.Errorf("selector resolution failed: %w", err)
	}

	resolved, _ := result.([]byte)
	fmt.Println(output.Escape(resolved))
	return nil
}
