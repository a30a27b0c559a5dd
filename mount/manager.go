package mount

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	gofs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/moby/sys/mountinfo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/augustgoad/memfs/fsadapter"
	"github.com/augustgoad/memfs/tree"
)

const maxUnmountAttempts = 5

// Handle is the scoped resource returned by Mount. Its release path
// (Unmount) guarantees the host mount point is detached, making up to
// maxUnmountAttempts attempts with a force-detach between attempts, until
// the host driver confirms the mount point is gone.
type Handle struct {
	mountPoint string
	server     *fuse.Server
	logger     *log.Logger

	mu      sync.Mutex
	mounted atomic.Bool
	group   *errgroup.Group
}

// Mount binds t to mountPoint and starts the kernel adapter's worker.
// Unknown options cannot be expressed at all — Options is a concrete
// struct, not a bag — so there is nothing to reject here beyond what the
// host driver itself rejects.
func Mount(t *tree.Tree, mountPoint string, opts Options) (*Handle, error) {
	logger := opts.logger()
	root := fsadapter.NewRoot(t, opts.Metrics)

	mountOptions := fuse.MountOptions{
		AllowOther: opts.AllowOther,
		FsName:     opts.FSName,
		Name:       subtypeOrDefault(opts.Subtype),
		Debug:      opts.Debug,
		Logger:     logger,
	}
	if opts.ReadOnly {
		mountOptions.Options = append(mountOptions.Options, "ro")
	}

	server, err := gofs.Mount(mountPoint, root, &gofs.Options{MountOptions: mountOptions})
	if err != nil {
		return nil, &tree.Error{Kind: tree.MountFailure, Path: mountPoint, Err: err}
	}

	h := &Handle{mountPoint: mountPoint, server: server, logger: logger}
	h.mounted.Store(true)

	group, _ := errgroup.WithContext(context.Background())
	group.Go(func() error {
		h.server.Wait()
		h.mounted.Store(false)
		return nil
	})
	h.group = group

	return h, nil
}

func subtypeOrDefault(subtype string) string {
	if subtype == "" {
		return "memfs"
	}
	return subtype
}

// MountPoint returns the host directory the tree is bound to.
func (h *Handle) MountPoint() string { return h.mountPoint }

// IsMounted reports whether the mount is still attached.
func (h *Handle) IsMounted() bool { return h.mounted.Load() }

// Wait blocks until the kernel adapter's worker goroutine returns, which
// happens either after Unmount() detaches the mount or after the host
// unmounts it directly (e.g. a lazy umount from outside the process).
func (h *Handle) Wait() { _ = h.group.Wait() }

// Unmount signals the adapter worker to stop accepting new requests,
// drains in-flight ones, and detaches the mount, retrying with
// force-detach if the host reports the mount point busy. Only the final
// attempt's failure is reported.
func (h *Handle) Unmount() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.mounted.Load() {
		return nil
	}

	var lastErr error
	backoff := 50 * time.Millisecond
	for attempt := 1; attempt <= maxUnmountAttempts; attempt++ {
		lastErr = h.server.Unmount()
		if lastErr == nil {
			break
		}
		h.logger.Printf("unmount %s: attempt %d/%d: %v", h.mountPoint, attempt, maxUnmountAttempts, lastErr)
		if attempt == maxUnmountAttempts {
			break
		}
		forceDetach(h.mountPoint)
		if mounted, err := mountinfo.Mounted(h.mountPoint); err == nil && !mounted {
			lastErr = nil
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	h.group.Wait()
	h.mounted.Store(false)

	if lastErr != nil {
		return &tree.Error{Kind: tree.MountFailure, Path: h.mountPoint, Err: lastErr}
	}
	return nil
}

// forceDetach asks the host kernel directly to detach mountPoint,
// bypassing the FUSE server, when a graceful Unmount() has failed
// because the mount point is reported busy.
func forceDetach(mountPoint string) {
	_ = unix.Unmount(mountPoint, unix.MNT_FORCE)
}
