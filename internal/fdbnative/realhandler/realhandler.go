// Package realhandler resolves the real, cgo-backed fdbnative.Handler when
// this binary was built with the fdb_cgo tag, and reports unavailable
// otherwise. database.Open consults it so that Config.Mock=false fails
// fast with a clear error on a build that has no native client library
// linked in, instead of silently falling back to the mock.
package realhandler

import (
	"errors"

	"github.com/marmos91/fdb-go/internal/fdbnative"
)

// Available reports whether New can produce a working Handler in this
// build. False unless built with -tags fdb_cgo.
var Available bool

// New resolves the real Handler. Replaced by an init() in
// realhandler_cgo.go when built with the fdb_cgo tag.
var New = func() (fdbnative.Handler, error) {
	return nil, errors.New("realhandler: this binary was built without -tags fdb_cgo; set Config.Mock to use the in-memory handler instead")
}
