package domain

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Opcode identifies the NVMe command carried by a request.
type Opcode uint8

const (
	OpFlush   Opcode = 0x00
	OpWrite   Opcode = 0x01
	OpRead    Opcode = 0x02
	OpCompare Opcode = 0x05

	// OpFabrics is the fabrics command type. Fabrics commands never go
	// through namespace routing; seeing one there is a protocol anomaly.
	OpFabrics Opcode = 0x7f
)

// RequestFlags carry routing metadata on a request.
type RequestFlags uint32

const (
	// FlagMultipath marks a request as routed through a namespace head
	// and therefore eligible for failover to another path.
	FlagMultipath RequestFlags = 1 << iota
)

// Result is the final outcome of a request as seen by the submitter.
type Result struct {
	Status Status
	Err    error
}

// Request is a single I/O request travelling through the router. The
// Target is the name of the path node currently responsible for it; an
// empty Target means the request is unassigned and will be routed from
// the head.
type Request struct {
	ID     string
	Op     Opcode
	LBA    uint64
	Length uint32
	Data   []byte
	Flags  RequestFlags
	Status Status
	Target string

	// Submitted is set each time the request is handed to a device.
	Submitted time.Time

	finished atomic.Bool
	done     chan Result
}

// NewRequest creates a request with a fresh ID and an unassigned target.
func NewRequest(op Opcode, lba uint64, data []byte) *Request {
	return &Request{
		ID:     uuid.New().String(),
		Op:     op,
		LBA:    lba,
		Length: uint32(len(data)),
		Data:   data,
		done:   make(chan Result, 1),
	}
}

// Finish resolves the request toward its submitter. Only the first call
// takes effect; a request buffered for retry must not be finished.
func (r *Request) Finish(st Status, err error) {
	if !r.finished.CompareAndSwap(false, true) {
		return
	}
	r.Status = st
	r.done <- Result{Status: st, Err: err}
}

// Finished reports whether the request has been resolved.
func (r *Request) Finished() bool {
	return r.finished.Load()
}

// Done returns the channel carrying the final result.
func (r *Request) Done() <-chan Result {
	return r.done
}

// Wait blocks until the request resolves or the context expires.
func (r *Request) Wait(ctx context.Context) (Result, error) {
	select {
	case res := <-r.done:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
