package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/marmos91/fdb-go/pkg/fdb/tuple"
	"github.com/spf13/cobra"
)

var tupleCmd = &cobra.Command{
	Use:   "tuple",
	Short: "Pack and unpack tuple-encoded keys",
}

var tuplePackCmd = &cobra.Command{
	Use:   "pack <json-array>",
	Short: "Pack a JSON array of elements into a tuple-encoded key, printed as hex",
	Args:  cobra.ExactArgs(1),
	RunE:  runTuplePack,
}

var tupleUnpackCmd = &cobra.Command{
	Use:   "unpack <hex>",
	Short: "Unpack a tuple-encoded key (hex) into a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE:  runTupleUnpack,
}

func init() {
	tupleCmd.AddCommand(tuplePackCmd, tupleUnpackCmd)
	rootCmd.AddCommand(tupleCmd)
}

func runTuplePack(cmd *cobra.Command, args []string) error {
	var elements []any
	if err := json.Unmarshal([]byte(args[0]), &elements); err != nil {
		return fmt.Errorf("invalid JSON array: %w", err)
	}

	t := make(tuple.Tuple, len(elements))
	for i, el := range elements {
		v, err := fromJSONElement(el)
		if err != nil {
			return err
		}
		t[i] = v
	}

	packed, err := tuple.Pack(t)
	if err != nil {
		return fmt.Errorf("pack failed: %w", err)
	}

	fmt.Println(hex.EncodeToString(packed))
	return nil
}

func runTupleUnpack(cmd *cobra.Command, args []string) error {
	raw, err := hex.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}

	t, err := tuple.Unpack(raw)
	if err != nil {
		return fmt.Errorf("unpack failed: %w", err)
	}

	elements := make([]any, len(t))
	for i, el := range t {
		elements[i] = toJSONElement(el)
	}

	out, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// fromJSONElement narrows a json.Unmarshal'd value down to the concrete Go
// types tuple.Writer understands. JSON has no int/float distinction, so a
// bare number is packed as int64 when it has no fractional part.
func fromJSONElement(el any) (any, error) {
	switch v := el.(type) {
	case nil, string, bool:
		return v, nil
	case float64:
		if v == float64(int64(v)) {
			return int64(v), nil
		}
		return v, nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported tuple element %T", el)
	}
}

// toJSONElement widens a decoded tuple element back into something
// encoding/json can marshal directly.
func toJSONElement(el any) any {
	if b, ok := el.([]byte); ok {
		return hex.EncodeToString(b)
	}
	return el
}
