package testutil

import "errors"

// ErrSimulated is a sentinel error for testing error handling paths
// (failed journal writes, database outages, rejected control commands).
var ErrSimulated = errors.New("simulated error for testing")
