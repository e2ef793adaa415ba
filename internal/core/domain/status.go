package domain

import "fmt"

// Status is an NVMe completion status code as reported by a controller.
// Only the low 11 bits carry the status code proper; the remaining bits
// hold phase/retry metadata that classification must ignore.
type Status uint16

// StatusMask extracts the status code field.
const StatusMask Status = 0x7ff

// Generic command status codes.
const (
	StatusSuccess             Status = 0x0
	StatusInvalidOpcode       Status = 0x1
	StatusInvalidField        Status = 0x2
	StatusInvalidNS           Status = 0xb
	StatusLBARange            Status = 0x80
	StatusCapExceeded         Status = 0x81
	StatusNSNotReady          Status = 0x82
	StatusReservationConflict Status = 0x83
)

// I/O command set specific status codes. These values are reused for
// fabrics commands, which must never reach the I/O completion path.
const (
	StatusBadAttributes    Status = 0x180
	StatusInvalidPI        Status = 0x181
	StatusReadOnly         Status = 0x182
	StatusONCSNotSupported Status = 0x183
)

// Media and data integrity status codes.
const (
	StatusWriteFault     Status = 0x280
	StatusReadError      Status = 0x281
	StatusGuardCheck     Status = 0x282
	StatusAppTagCheck    Status = 0x283
	StatusRefTagCheck    Status = 0x284
	StatusCompareFailed  Status = 0x285
	StatusAccessDenied   Status = 0x286
	StatusUnwrittenBlock Status = 0x287
)

// Transport-level status codes.
const (
	StatusHostPathError Status = 0x370
	StatusHostAborted   Status = 0x371
)

var statusNames = map[Status]string{
	StatusSuccess:             "success",
	StatusInvalidOpcode:       "invalid opcode",
	StatusInvalidField:        "invalid field",
	StatusInvalidNS:           "invalid namespace",
	StatusLBARange:            "lba out of range",
	StatusCapExceeded:         "capacity exceeded",
	StatusNSNotReady:          "namespace not ready",
	StatusReservationConflict: "reservation conflict",
	StatusBadAttributes:       "conflicting attributes",
	StatusInvalidPI:           "invalid protection information",
	StatusReadOnly:            "write to read-only range",
	StatusONCSNotSupported:    "oncs not supported",
	StatusWriteFault:          "write fault",
	StatusReadError:           "unrecovered read error",
	StatusGuardCheck:          "guard check failed",
	StatusAppTagCheck:         "application tag check failed",
	StatusRefTagCheck:         "reference tag check failed",
	StatusCompareFailed:       "compare failed",
	StatusAccessDenied:        "access denied",
	StatusUnwrittenBlock:      "deallocated or unwritten block",
	StatusHostPathError:       "host pathing error",
	StatusHostAborted:         "host aborted command",
}

// String returns a human-readable name for known status codes and the
// raw hex value for everything else.
func (s Status) String() string {
	if name, ok := statusNames[s&StatusMask]; ok {
		return name
	}
	return fmt.Sprintf("0x%03x", uint16(s&StatusMask))
}

// StatusError is a terminal completion status delivered to the caller
// unchanged.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nvme status 0x%03x: %s", uint16(e.Status&StatusMask), e.Status)
}
