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

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database connectivity status",
	Long: `Open the configured database and report whether a trivial
read-write round trip against it succeeds.

Examples:
  # Check the mock handler
  fdbctl status --mock

  # Check a real cluster
  fdbctl status --cluster-file /etc/foundationdb/fdb.cluster`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// databaseStatus reports whether the configured database is reachable.
type databaseStatus struct {
	Backend string `json:"backend" yaml:"backend"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (s databaseStatus) Headers() []string { return []string{"BACKEND", "HEALTHY", "ERROR"} }

func (s databaseStatus) Rows() [][]string {
	return [][]string{{s.Backend, fmt.Sprintf("%t", s.Healthy), s.Error}}
}

func runStatus(cmd *cobra.Command, args []string) error {
	backend := "cluster:" + cmdutil.Flags.ClusterFile
	if cmdutil.Flags.Mock || cmdutil.Flags.ClusterFile == "" {
		backend = "mock"
	}

	status := databaseStatus{Backend: backend, Healthy: true}

	db, err := cmdutil.OpenDatabase(cmd.Context())
	if err != nil {
		status.Healthy = false
		status.Error = err.Error()
	} else {
		defer func() { _ = db.Close() }()
		const probeKey = "\xff/fdbctl/status-probe"
		_, err := db.Write(cmd.Context(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
			return nil, txn.Set([]byte(probeKey), []byte("ok"))
		})
		if err != nil {
			status.Healthy = false
			status.Error = err.Error()
		}
	}

	switch cmdutil.GetOutputFormat() {
	case "json":
		return output.PrintJSON(os.Stdout, status)
	case "yaml":
		return output.PrintYAML(os.Stdout, status)
	default:
		return output.PrintTable(os.Stdout, status)
	}
}
