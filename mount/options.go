// Package mount implements the mount manager: binding a
// tree to a host mount point, supervising the kernel adapter's worker,
// and guaranteeing unmount on scope exit.
package mount

import (
	"log"

	"github.com/augustgoad/memfs/internal/metrics"
)

// Options are the mount options recognized by Mount.
// An unrecognized option has no field here and is simply not settable —
// there is no catch-all map, so a typo fails at compile time rather than
// being silently ignored.
type Options struct {
	// AllowOther permits uids other than the mounting user to see the
	// mount (maps to FUSE's allow_other).
	AllowOther bool
	// ReadOnly rejects every mutating kernel request with EROFS before
	// it reaches the tree.
	ReadOnly bool
	// FSName is displayed in the host's mount table as the source
	// device name.
	FSName string
	// Subtype is appended to the filesystem type shown in the mount
	// table (e.g. "fuse.memfs").
	Subtype string
	// Debug routes FUSE protocol tracing to Logger.
	Debug bool
	// Logger receives debug and lifecycle messages. Defaults to
	// log.Default() if nil.
	Logger *log.Logger
	// Metrics, if non-nil, receives per-operation counters from the
	// kernel adapter.
	Metrics *metrics.Registry
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}
