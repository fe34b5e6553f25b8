package database

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a storage error so callers never have to inspect error
// text. Timeout degrades on the read paths; everything else propagates.
type Kind int

const (
	KindFatal Kind = iota
	KindTimeout
	KindConnectivity
)

// Classify maps a storage error to its Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindFatal
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnectivity
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return KindConnectivity
	}
	return KindFatal
}

// IsTimeout reports whether err is a deadline trip rather than a real
// failure.
func IsTimeout(err error) bool {
	return err != nil && Classify(err) == KindTimeout
}
