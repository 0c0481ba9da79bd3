package queue

import (
	"errors"
	"fmt"
)

// Sentinel kinds for queue errors. ErrClosed is also an ErrBackpressure;
// callers that need to tell shutdown apart check ErrClosed first.
var (
	ErrBackpressure = errors.New("append queue is full")
	ErrClosed       = fmt.Errorf("%w: queue closed", ErrBackpressure)
)
