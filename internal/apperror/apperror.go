// Package apperror implements the engine's request-error plane (spec §7):
// structured errors returned to callers, distinct from the telemetry plane
// (logged warnings the engine discards on purpose).
//
// Grounded on shared/errors/errors.go from the teacher, trimmed to the
// fields this engine's operations actually return.
package apperror

import (
	"fmt"
	"time"
)

// Code is one of the request-error kinds spec.md §7 enumerates.
type Code string

const (
	AlreadyInGame                    Code = "ALREADY_IN_GAME"
	NotInAGame                       Code = "NOT_IN_A_GAME"
	NoSuchGame                       Code = "NO_SUCH_GAME"
	GameNotJoinable                  Code = "GAME_NOT_JOINABLE"
	InvalidPassword                  Code = "INVALID_PASSWORD"
	HostOnlyOption                   Code = "HOST_ONLY_OPTION"
	InvalidGameState                 Code = "INVALID_GAME_STATE"
	InvalidPlayerGameStateTransition Code = "INVALID_PLAYER_GAME_STATE_TRANSITION"
	InvalidFeaturedMod               Code = "INVALID_FEATURED_MOD"
	CantRestoreGameDoesntExist       Code = "CANT_RESTORE_GAME_DOESNT_EXIST"
	CantRestoreGameNotParticipant    Code = "CANT_RESTORE_GAME_NOT_PARTICIPANT"
)

// AppError is the structured error the engine's public operations return.
type AppError struct {
	Code      Code                   `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// New builds an AppError of the given code with a formatted message.
func New(code Code, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	}
}

// Wrap builds an AppError of the given code around a lower-level cause.
func Wrap(code Code, cause error, format string, args ...interface{}) *AppError {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// WithDetail attaches a key/value to the error's Details map, returning the
// receiver for chaining.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// Is reports whether err is an *AppError with the given code.
func Is(err error, code Code) bool {
	ae, ok := err.(*AppError)
	return ok && ae.Code == code
}
