//go:build fdb_cgo

package realhandler

import (
	"github.com/marmos91/fdb-go/internal/fdbnative"
	"github.com/marmos91/fdb-go/internal/fdbnative/cgohandler"
)

func init() {
	Available = true
	New = func() (fdbnative.Handler, error) {
		return cgohandler.New(), nil
	}
}
