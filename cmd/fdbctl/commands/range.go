package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/marmos91/fdb-go/cmd/fdbctl/cmdutil"
	"github.com/marmos91/fdb-go/internal/cli/output"
	"github.com/marmos91/fdb-go/pkg/fdb"
	"github.com/spf13/cobra"
)

var rangeReverse bool

var rangeCmd = &cobra.Command{
	Use:   "range <begin> <end>",
	Short: "Scan a key range",
	Args:  cobra.ExactArgs(2),
	RunE:  runRange,
}

func init() {
	rangeCmd.Flags().BoolVar(&rangeReverse, "reverse", false, "scan from end to begin")
	rootCmd.AddCommand(rangeCmd)
}

func runRange(cmd *cobra.Command, args []string) error {
	db, err := cmdutil.OpenDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	begin, end := []byte(args[0]), []byte(args[1])

	result, err := db.Read(cmd.Context(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		it, err := txn.GetRange(begin, end, rangeReverse)
		if err != nil {
			return nil, err
		}
		var pairs []fdb.KeyValue
		for {
			kv, ok := it.Next(ctx)
			if !ok {
				break
			}
			pairs = append(pairs, kv)
		}
		return pairs, it.Err()
	})
	if err != nil {
		return fmt.Errorf("range failed: %w", err)
	}

	pairs, _ := result.([]fdb.KeyValue)

	switch cmdutil.GetOutputFormat() {
	case "json":
		return output.PrintJSON(os.Stdout, pairs)
	case "yaml":
		return output.PrintYAML(os.Stdout, pairs)
	default:
		if len(pairs) == 0 {
			fmt.Println("(empty range)")
			return nil
		}
		rows := make(output.Pairs, len(pairs))
		for i, kv := range pairs {
			rows[i] = [2][]byte{kv.Key, kv.Value}
		}
		return output.PrintTable(os.Stdout, rows)
	}
}
