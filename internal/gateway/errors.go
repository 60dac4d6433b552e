package gateway

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// Error taxonomy for gateway calls. Callers branch with errors.Is; only
// ErrUnavailable is recoverable (it triggers the offline queue upstream).
var (
	// ErrNotFound: the referenced habit or log does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated: no owner id on the call.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnavailable: transport or backend failure; safe to retry later.
	ErrUnavailable = errors.New("unavailable")
	// ErrValidation: the payload is invalid; never retried.
	ErrValidation = errors.New("validation failed")
	// ErrUnknown: anything unclassified; surfaced, not retried.
	ErrUnknown = errors.New("unknown error")
)

// classify maps driver-level failures onto the taxonomy. Connection-class
// problems become ErrUnavailable so the coordinator can queue the mutation
// instead of failing the caller.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, sql.ErrConnDone),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, netErr)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503": // foreign key violation: the habit is gone
			return fmt.Errorf("%w: %v", ErrNotFound, pqErr)
		}
		switch pqErr.Code.Class() {
		case "08", "53", "57", "58": // connection, resources, shutdown, system
			return fmt.Errorf("%w: %v", ErrUnavailable, pqErr)
		case "22", "23": // data or constraint problem
			return fmt.Errorf("%w: %v", ErrValidation, pqErr)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnknown, err)
}
