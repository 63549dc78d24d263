package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage is returned when a send is attempted with blank text
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned when a send is attempted while another is outstanding
	ErrBusy = errors.New("a message is already being sent")
)

// StoreError represents errors accessing the local state store
type StoreError struct {
	Path string
	Op   string // "open", "get", "set", "clear"
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("state store error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// TransportError represents a remote call that did not complete successfully
type TransportError struct {
	Op         string // "chat", "history", "sessions", "delete", "health"
	URL        string
	StatusCode int    // 0 when no response was received
	Detail     string // server-supplied detail, if any
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Detail != "" {
			return fmt.Sprintf("transport error [%s] %s: status %d: %s", e.Op, e.URL, e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("transport error [%s] %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("transport error [%s] %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// genericSendFailure is shown when a failed send carries no server detail
const genericSendFailure = "Failed to send message. Please try again."

// FailureReason returns the most specific description available for a failed send
func FailureReason(err error) string {
	var te *TransportError
	if errors.As(err, &te) && te.Detail != "" {
		return te.Detail
	}
	return genericSendFailure
}

// ConfigError represents an invalid configuration value
type ConfigError struct {
	Key   string
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: invalid value %q for %s", e.Value, e.Key)
}
