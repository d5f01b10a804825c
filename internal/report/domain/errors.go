package domain

import "errors"

var (
	// ErrNotFound means an upstream lookup returned no record.
	ErrNotFound = errors.New("report: not found")
	// ErrUpstreamUnavailable means a mandatory upstream call failed.
	ErrUpstreamUnavailable = errors.New("report: upstream unavailable")
	// ErrMapNotConfigured means the sensor carries no building map placement.
	ErrMapNotConfigured = errors.New("report: map not configured")
)
