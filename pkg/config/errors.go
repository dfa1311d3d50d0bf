package config

import "errors"

// Configuration loading and validation errors.
var (
	ErrNotFound   = errors.New("configuration file not found")
	ErrParse      = errors.New("configuration parse error")
	ErrValidation = errors.New("configuration validation error")
	ErrWatch      = errors.New("configuration watch error")
)
