// Package mpath routes namespace I/O across redundant controller paths.
//
// This package contains:
//   - Head: the multipath-stable identity for a namespace with its path set
//   - NeedsFailover: classification of completion statuses into terminal
//     errors and path failures
//   - the requeue queue and drain work that resubmit requests after a
//     path failure
//   - DiskName: device node identity derivation
package mpath

import (
	"log/slog"
	"sync"

	"github.com/quangdm/mpath/internal/core/domain"
)

var fabricsCollisionOnce sync.Once

// NeedsFailover reports whether a failed request should be retried on
// another path. Requests not routed through a head are never failed
// over. For routed requests, statuses that describe a problem with the
// command or the data itself are terminal; everything else, including
// all transport errors, is assumed to be a path failure.
func NeedsFailover(req *domain.Request) bool {
	if req.Flags&domain.FlagMultipath == 0 {
		return false
	}

	switch req.Status & domain.StatusMask {
	// Generic command status:
	case domain.StatusInvalidOpcode,
		domain.StatusInvalidField,
		domain.StatusInvalidNS,
		domain.StatusLBARange,
		domain.StatusCapExceeded,
		domain.StatusReservationConflict:
		return false

	// I/O command set specific error. Unfortunately these values are
	// reused for fabrics commands, but those should never get here.
	case domain.StatusBadAttributes,
		domain.StatusInvalidPI,
		domain.StatusReadOnly,
		domain.StatusONCSNotSupported:
		if req.Op == domain.OpFabrics {
			fabricsCollisionOnce.Do(func() {
				slog.Warn("I/O status code seen on a fabrics command",
					"request", req.ID,
					"status", req.Status.String())
			})
		}
		return false

	// Media and data integrity errors:
	case domain.StatusWriteFault,
		domain.StatusReadError,
		domain.StatusGuardCheck,
		domain.StatusAppTagCheck,
		domain.StatusRefTagCheck,
		domain.StatusCompareFailed,
		domain.StatusAccessDenied,
		domain.StatusUnwrittenBlock:
		return false
	}

	// Everything else could be a path failure, so should be retried.
	return true
}
