package common

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"
)

// Error taxonomy shared by the tree, store and tool packages.
var (
	ErrNotFound         = errors.New("not found")
	ErrNotADirectory    = errors.New("not a directory")
	ErrInvalidJSON      = errors.New("invalid JSON")
	ErrInvalidSchema    = errors.New("invalid document schema")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAlreadyExists    = errors.New("already exists")
	ErrBackupFailed     = errors.New("backup failed")
	ErrIO               = errors.New("I/O failure")
)

// Stable codes reported in structured tool results.
const (
	CodeNotFound         = "not_found"
	CodeNotADirectory    = "not_a_directory"
	CodeInvalidJSON      = "invalid_json"
	CodeInvalidSchema    = "invalid_schema"
	CodePermissionDenied = "permission_denied"
	CodeAlreadyExists    = "already_exists"
	CodeBackupFailed     = "backup_failed"
	CodeIOFailure        = "io_failure"
	CodeInvalidArguments = "invalid_arguments"
)

// PermissionDeniedMarker is stored in a directory node's error field when
// its entries could not be listed for lack of permission.
const PermissionDeniedMarker = "permission denied"

// ErrInvalidArguments reports malformed tool input.
var ErrInvalidArguments = errors.New("invalid arguments")

var codeTable = []struct {
	err  error
	code string
}{
	{ErrNotFound, CodeNotFound},
	{ErrNotADirectory, CodeNotADirectory},
	{ErrInvalidJSON, CodeInvalidJSON},
	{ErrInvalidSchema, CodeInvalidSchema},
	{ErrPermissionDenied, CodePermissionDenied},
	{ErrAlreadyExists, CodeAlreadyExists},
	{ErrBackupFailed, CodeBackupFailed},
	{ErrInvalidArguments, CodeInvalidArguments},
	{ErrIO, CodeIOFailure},
}

// Code classifies err into one of the stable result codes.
// Anything unrecognised is an I/O failure.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, entry := range codeTable {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return CodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return CodePermissionDenied
	case errors.Is(err, fs.ErrExist):
		return CodeAlreadyExists
	}
	return CodeIOFailure
}

// ListingError renders a directory listing failure the way it is recorded on
// the affected node.
func ListingError(err error) string {
	if errors.Is(err, fs.ErrPermission) {
		return PermissionDeniedMarker
	}
	return err.Error()
}

// ErrorUtils provides common error handling utilities
type ErrorUtils struct {
	logger zerolog.Logger
}

// NewErrorUtils creates a new ErrorUtils instance
func NewErrorUtils(logger zerolog.Logger) *ErrorUtils {
	return &ErrorUtils{logger: logger}
}

// WrapError wraps an error with additional context
func (eu *ErrorUtils) WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	context := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", context, err)
}

// LogAndWrapError logs an error at level and wraps it with context
func (eu *ErrorUtils) LogAndWrapError(err error, level zerolog.Level, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	context := fmt.Sprintf(message, args...)
	eu.logger.WithLevel(level).Err(err).Str("code", Code(err)).Msg(context)

	return fmt.Errorf("%s: %w", context, err)
}

// HandleOperationError provides common error handling for file operations
func (eu *ErrorUtils) HandleOperationError(err error, operation, path string, logError bool) error {
	if err == nil {
		return nil
	}

	if logError {
		eu.logger.Error().
			Str("operation", operation).
			Str("path", path).
			Err(err).
			Msg("Operation failed")
	}

	return eu.WrapError(err, "failed to %s %s", operation, path)
}
