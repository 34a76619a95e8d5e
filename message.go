package moor

import (
	"time"

	"github.com/google/uuid"
)

// Char is a single AMQP character value, distinct from a bare int32 body so
// the two enumerated body kinds remain distinguishable by Go's type system
// (rune is itself only an alias for int32).
type Char rune

// RoutingType is the Artemis routing-type capability a link advertises in
// its source or target.
type RoutingType int

const (
	RoutingTypeAnycast RoutingType = iota
	RoutingTypeMulticast
)

func (r RoutingType) String() string {
	if r == RoutingTypeMulticast {
		return "multicast"
	}
	return "anycast"
}

// bodyKind enumerates the exact set of message body types this package
// accepts. Anything else fails Message construction with a configuration
// error.
type bodyKind int

const (
	bodyKindString bodyKind = iota
	bodyKindChar
	bodyKindInt8
	bodyKindUint8
	bodyKindInt16
	bodyKindUint16
	bodyKindInt32
	bodyKindUint32
	bodyKindInt64
	bodyKindUint64
	bodyKindFloat32
	bodyKindFloat64
	bodyKindBool
	bodyKindUUID
	bodyKindTimestamp
	bodyKindBinary
	bodyKindList
)

// Message is an outbound or inbound payload with exactly one body value
// drawn from the enumerated supported set, plus AMQP application
// properties, priority, and time-to-live.
type Message struct {
	body       any
	kind       bodyKind
	Priority   *uint8
	TTL        *time.Duration
	Properties map[string]any
}

// NewMessage constructs a Message from a supported body value. A nil body
// fails with a configuration error; an unsupported concrete type fails with
// a configuration error naming the type.
func NewMessage(body any) (*Message, error) {
	if body == nil {
		return nil, newConfigError("body", "message body must not be nil")
	}
	kind, ok := classify(body)
	if !ok {
		return nil, fmtErrorf(KindConfiguration, "unsupported message body type %T", body)
	}
	return &Message{body: body, kind: kind}, nil
}

func classify(body any) (bodyKind, bool) {
	switch body.(type) {
	case string:
		return bodyKindString, true
	case Char:
		return bodyKindChar, true
	case int8:
		return bodyKindInt8, true
	case uint8:
		return bodyKindUint8, true
	case int16:
		return bodyKindInt16, true
	case uint16:
		return bodyKindUint16, true
	case int32:
		return bodyKindInt32, true
	case uint32:
		return bodyKindUint32, true
	case int64:
		return bodyKindInt64, true
	case uint64:
		return bodyKindUint64, true
	case float32:
		return bodyKindFloat32, true
	case float64:
		return bodyKindFloat64, true
	case bool:
		return bodyKindBool, true
	case uuid.UUID:
		return bodyKindUUID, true
	case time.Time:
		return bodyKindTimestamp, true
	case []byte:
		return bodyKindBinary, true
	case []any:
		return bodyKindList, true
	default:
		return 0, false
	}
}

// GetBody returns the message body when the stored value's type matches T,
// otherwise the zero value for T. It never returns an error: a type
// mismatch is a normal, silent miss per the body-type contract.
func GetBody[T any](m *Message) T {
	var zero T
	if m == nil {
		return zero
	}
	if v, ok := m.body.(T); ok {
		return v
	}
	return zero
}

// Kind reports which of the enumerated body types this message holds.
func (m *Message) Kind() bodyKind {
	return m.kind
}

func (k bodyKind) String() string {
	switch k {
	case bodyKindString:
		return "string"
	case bodyKindChar:
		return "char"
	case bodyKindInt8:
		return "int8"
	case bodyKindUint8:
		return "uint8"
	case bodyKindInt16:
		return "int16"
	case bodyKindUint16:
		return "uint16"
	case bodyKindInt32:
		return "int32"
	case bodyKindUint32:
		return "uint32"
	case bodyKindInt64:
		return "int64"
	case bodyKindUint64:
		return "uint64"
	case bodyKindFloat32:
		return "float32"
	case bodyKindFloat64:
		return "float64"
	case bodyKindBool:
		return "bool"
	case bodyKindUUID:
		return "uuid"
	case bodyKindTimestamp:
		return "timestamp"
	case bodyKindBinary:
		return "binary"
	case bodyKindList:
		return "list"
	default:
		return "unknown"
	}
}

func bodyKindFromString(s string) (bodyKind, bool) {
	switch s {
	case "string":
		return bodyKindString, true
	case "char":
		return bodyKindChar, true
	case "int8":
		return bodyKindInt8, true
	case "uint8":
		return bodyKindUint8, true
	case "int16":
		return bodyKindInt16, true
	case "uint16":
		return bodyKindUint16, true
	case "int32":
		return bodyKindInt32, true
	case "uint32":
		return bodyKindUint32, true
	case "int64":
		return bodyKindInt64, true
	case "uint64":
		return bodyKindUint64, true
	case "float32":
		return bodyKindFloat32, true
	case "float64":
		return bodyKindFloat64, true
	case "bool":
		return bodyKindBool, true
	case "uuid":
		return bodyKindUUID, true
	case "timestamp":
		return bodyKindTimestamp, true
	case "binary":
		return bodyKindBinary, true
	case "list":
		return bodyKindList, true
	default:
		return 0, false
	}
}
