package config

import "errors"

// ErrInvalidConfig wraps every validation failure of a loaded Config,
// including a competitor registry that is not four distinct ids.
var ErrInvalidConfig = errors.New("invalid racebet config")

// ErrLoadConfig wraps failures to read the YAML file or environment.
var ErrLoadConfig = errors.New("cannot load racebet config")
