// Package errmsg turns failed operations into the messages the CLI prints.
package errmsg

import (
	"errors"
	"fmt"
)

// Op names what the user asked for, phrased to follow "Failed to".
type Op string

const (
	OpConfigLoad   Op = "load configuration"
	OpDatabaseOpen Op = "open database"
	OpLogOpen      Op = "open log file"

	OpLibraryScan Op = "scan library"
	OpLibraryLoad Op = "load library"
	OpTrackFind   Op = "find track"

	OpSourceAdd    Op = "add library source"
	OpSourceRemove Op = "remove library source"
	OpSourceLoad   Op = "load library sources"

	OpRecommend  Op = "compute recommendations"
	OpCacheClean Op = "clean Last.fm cache"
)

// Error is a failed operation, optionally on a named target such as a path
// or a track reference.
type Error struct {
	Op     Op
	Target string
	Err    error
}

// New wraps err, or returns nil when err is nil. An error that already
// carries an *Error is returned as is so messages never nest.
func New(op Op, target string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Op: op, Target: target, Err: err}
}

func (e *Error) Error() string {
	if e.Target == "" {
		return Format(e.Op, e.Err)
	}
	return FormatWith(e.Op, e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Format renders "Failed to <op>: <err>", or "" for a nil error.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith is Format with a quoted target after the operation.
func FormatWith(op Op, target string, err error) string {
	switch {
	case err == nil:
		return ""
	case target == "":
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, target, err)
}
