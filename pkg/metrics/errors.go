package metrics

import "errors"

// ErrUnknownSource is returned when a recommendation source label is empty.
var ErrUnknownSource = errors.New("unknown recommendation source")
