package moor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Kind categorizes an error the way the core distinguishes retryable
// failures from ones that must surface synchronously to a caller.
type Kind int

const (
	// KindUnknown is the zero value; never returned by this package.
	KindUnknown Kind = iota
	// KindConfiguration marks bad policy parameters, an empty endpoint
	// list, or an invalid message body type.
	KindConfiguration
	// KindConnectFailed marks a failed transport session open; retried
	// by the supervisor under the configured policy.
	KindConnectFailed
	// KindLinkDetached marks a remote link close; surfaces to the
	// in-flight operation and triggers recovery.
	KindLinkDetached
	// KindCancelled marks a caller- or shutdown-triggered cancellation.
	KindCancelled
	// KindTopologyConflict marks a rejected broker management request.
	KindTopologyConflict
	// KindFatal marks an unrecoverable invariant violation inside the
	// supervisor loop; logged, loop continues best-effort.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnectFailed:
		return "connect_failed"
	case KindLinkDetached:
		return "link_detached"
	case KindCancelled:
		return "cancelled"
	case KindTopologyConflict:
		return "topology_conflict"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is comparisons. Every Error produced by this
// package wraps exactly one of these.
var (
	ErrConfiguration    = errors.New("moor: configuration error")
	ErrConnectFailed    = errors.New("moor: connect failed")
	ErrLinkDetached     = errors.New("moor: link detached")
	ErrCancelled        = errors.New("moor: cancelled")
	ErrTopologyConflict = errors.New("moor: topology conflict")
	ErrFatal            = errors.New("moor: fatal")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindConnectFailed:
		return ErrConnectFailed
	case KindLinkDetached:
		return ErrLinkDetached
	case KindCancelled:
		return ErrCancelled
	case KindTopologyConflict:
		return ErrTopologyConflict
	case KindFatal:
		return ErrFatal
	default:
		return nil
	}
}

// Error is the concrete error type returned by every public operation in
// this package. It carries the categorized Kind, an optional offending
// parameter name (for configuration errors), and the underlying cause.
type Error struct {
	Kind    Kind
	Param   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("moor: ")
	b.WriteString(e.Kind.String())
	if e.Param != "" {
		b.WriteString(" (param ")
		b.WriteString(e.Param)
		b.WriteByte(')')
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return nil
}

// Is lets errors.Is(err, ErrLinkDetached) etc. work without needing the
// caller to unwrap down to a Cause that happens to be that sentinel.
func (e *Error) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func newConfigError(param, message string) *Error {
	return &Error{Kind: KindConfiguration, Param: param, Message: message}
}

// translateError converts a transport-layer error (an *amqp091.Error, a
// network error, or a raw syscall error) into this package's Error: by
// structured amqp091 code first, then context cancellation or deadline,
// then net.Error, then syscall errno, then by matching substrings in the
// reason string, with a Fatal fallback for anything unrecognized.
func translateError(err error) *Error {
	if err == nil {
		return nil
	}

	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return translateAMQPError(amqpErr)
	}

	// context.DeadlineExceeded also satisfies net.Error, so it is matched
	// here, before the network-error branch.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newError(KindCancelled, err.Error(), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return newError(KindConnectFailed, "network timeout", err)
		}
		return newError(KindConnectFailed, "network error", err)
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ECONNABORTED, syscall.ETIMEDOUT:
			return newError(KindConnectFailed, "connection error", err)
		default:
			return newError(KindConnectFailed, "network error", err)
		}
	}

	reason := strings.ToLower(err.Error())
	switch {
	case strings.Contains(reason, "address already exists"),
		strings.Contains(reason, "addressdoesnotexist"),
		strings.Contains(reason, "queue already exists"),
		strings.Contains(reason, "already exists"),
		strings.Contains(reason, "does not exist"):
		return newError(KindTopologyConflict, err.Error(), err)
	case strings.Contains(reason, "context canceled"),
		strings.Contains(reason, "context deadline exceeded"),
		strings.Contains(reason, "cancelled"),
		strings.Contains(reason, "canceled"):
		return newError(KindCancelled, err.Error(), err)
	case strings.Contains(reason, "closed"):
		return newError(KindLinkDetached, err.Error(), err)
	default:
		return newError(KindFatal, err.Error(), err)
	}
}

// translateAMQPError maps amqp091 connection/channel-level error codes onto
// this package's Kind.
func translateAMQPError(amqpErr *amqp.Error) *Error {
	switch amqpErr.Code {
	case amqp.ConnectionForced:
		return newError(KindLinkDetached, "connection forced closed", amqpErr)
	case amqp.AccessRefused:
		return newError(KindTopologyConflict, "access refused", amqpErr)
	case amqp.NotFound:
		return newError(KindTopologyConflict, "not found", amqpErr)
	case amqp.ResourceLocked:
		return newError(KindTopologyConflict, "resource locked", amqpErr)
	case amqp.PreconditionFailed:
		return newError(KindTopologyConflict, "precondition failed", amqpErr)
	case amqp.ChannelError, amqp.UnexpectedFrame, amqp.FrameError, amqp.SyntaxError, amqp.CommandInvalid:
		return newError(KindLinkDetached, "channel error", amqpErr)
	case amqp.InternalError:
		return newError(KindFatal, "broker internal error", amqpErr)
	default:
		reason := strings.ToLower(amqpErr.Reason)
		if strings.Contains(reason, "exists") || strings.Contains(reason, "not found") {
			return newError(KindTopologyConflict, amqpErr.Reason, amqpErr)
		}
		return newError(KindLinkDetached, amqpErr.Reason, amqpErr)
	}
}

func fmtErrorf(kind Kind, format string, args ...any) *Error {
	return newError(kind, fmt.Sprintf(format, args...), nil)
}
