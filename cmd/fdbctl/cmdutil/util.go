// Package cmdutil provides shared utilities for fdbctl commands: resolving
// the configured Database from global flags, and formatting command output.
package cmdutil

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/fdb-go/internal/fdbconfig"
	"github.com/marmos91/fdb-go/pkg/fdb"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values shared by every subcommand.
type GlobalFlags struct {
	ClusterFile string
	Mock        bool
	Timeout     time.Duration
	Output      string
}

// OpenDatabase builds an fdbconfig.Config from the global flags and opens a
// Database against it. Callers are responsible for closing the result.
func OpenDatabase(ctx context.Context) (*fdb.Database, error) {
	cfg := fdbconfig.Config{
		ClusterFilePath: Flags.ClusterFile,
		Mock:            Flags.Mock || Flags.ClusterFile == "",
		Timeout:         Flags.Timeout,
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := fdb.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// GetOutputFormat returns the raw --output flag value.
func GetOutputFormat() string {
	return Flags.Output
}
