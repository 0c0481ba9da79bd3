package repository

import (
	"os"
	"time"
)

const (
	defaultFileMode    os.FileMode = 0o644
	defaultBusyTimeout             = 5 * time.Second
)

type options struct {
	fileMode    os.FileMode
	busyTimeout time.Duration
}

func defaultOptions() options {
	return options{fileMode: defaultFileMode, busyTimeout: defaultBusyTimeout}
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithFileMode sets the permissions of the CSV file.
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		if mode != 0 {
			o.fileMode = mode
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}
