package moor

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// bodyKindHeader is the AMQP header key carrying which enumerated body kind
// a message's bytes decode as. amqp091 has no type-tagged body of its own,
// so this header is what lets the receiving side recover a typed Message
// from the raw byte payload the wire actually carries.
const bodyKindHeader = "x-moor-body-kind"

// encodeMessageBody renders m's body into bytes suitable for an amqp091
// Publishing.Body, alongside the header value identifying its kind.
func encodeMessageBody(m *Message) ([]byte, string, error) {
	switch m.kind {
	case bodyKindString:
		return []byte(GetBody[string](m)), m.kind.String(), nil
	case bodyKindChar:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(GetBody[Char](m)))
		return buf, m.kind.String(), nil
	case bodyKindInt8:
		return []byte{byte(GetBody[int8](m))}, m.kind.String(), nil
	case bodyKindUint8:
		return []byte{GetBody[uint8](m)}, m.kind.String(), nil
	case bodyKindInt16:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(GetBody[int16](m)))
		return buf, m.kind.String(), nil
	case bodyKindUint16:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, GetBody[uint16](m))
		return buf, m.kind.String(), nil
	case bodyKindInt32:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(GetBody[int32](m)))
		return buf, m.kind.String(), nil
	case bodyKindUint32:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, GetBody[uint32](m))
		return buf, m.kind.String(), nil
	case bodyKindInt64:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(GetBody[int64](m)))
		return buf, m.kind.String(), nil
	case bodyKindUint64:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, GetBody[uint64](m))
		return buf, m.kind.String(), nil
	case bodyKindFloat32:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(GetBody[float32](m)))
		return buf, m.kind.String(), nil
	case bodyKindFloat64:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(GetBody[float64](m)))
		return buf, m.kind.String(), nil
	case bodyKindBool:
		if GetBody[bool](m) {
			return []byte{1}, m.kind.String(), nil
		}
		return []byte{0}, m.kind.String(), nil
	case bodyKindUUID:
		u := GetBody[uuid.UUID](m)
		b, err := u.MarshalBinary()
		return b, m.kind.String(), err
	case bodyKindTimestamp:
		ts := GetBody[time.Time](m)
		b, err := ts.MarshalBinary()
		return b, m.kind.String(), err
	case bodyKindBinary:
		return GetBody[[]byte](m), m.kind.String(), nil
	case bodyKindList:
		b, err := json.Marshal(GetBody[[]any](m))
		return b, m.kind.String(), err
	default:
		return nil, "", fmtErrorf(KindConfiguration, "cannot encode body kind %s", m.kind)
	}
}

// decodeMessageBody is encodeMessageBody's inverse, reconstructing a typed
// Message from the raw bytes an amqp091 Delivery carried plus the header
// identifying its kind.
func decodeMessageBody(kindName string, body []byte) (*Message, error) {
	kind, ok := bodyKindFromString(kindName)
	if !ok {
		return nil, fmtErrorf(KindConfiguration, "unknown body kind header %q", kindName)
	}
	switch kind {
	case bodyKindString:
		return NewMessage(string(body))
	case bodyKindChar:
		if len(body) < 4 {
			return nil, fmt.Errorf("moor: truncated char body")
		}
		return NewMessage(Char(binary.LittleEndian.Uint32(body)))
	case bodyKindInt8:
		if len(body) < 1 {
			return nil, fmt.Errorf("moor: truncated int8 body")
		}
		return NewMessage(int8(body[0]))
	case bodyKindUint8:
		if len(body) < 1 {
			return nil, fmt.Errorf("moor: truncated uint8 body")
		}
		return NewMessage(body[0])
	case bodyKindInt16:
		if len(body) < 2 {
			return nil, fmt.Errorf("moor: truncated int16 body")
		}
		return NewMessage(int16(binary.LittleEndian.Uint16(body)))
	case bodyKindUint16:
		if len(body) < 2 {
			return nil, fmt.Errorf("moor: truncated uint16 body")
		}
		return NewMessage(binary.LittleEndian.Uint16(body))
	case bodyKindInt32:
		if len(body) < 4 {
			return nil, fmt.Errorf("moor: truncated int32 body")
		}
		return NewMessage(int32(binary.LittleEndian.Uint32(body)))
	case bodyKindUint32:
		if len(body) < 4 {
			return nil, fmt.Errorf("moor: truncated uint32 body")
		}
		return NewMessage(binary.LittleEndian.Uint32(body))
	case bodyKindInt64:
		if len(body) < 8 {
			return nil, fmt.Errorf("moor: truncated int64 body")
		}
		return NewMessage(int64(binary.LittleEndian.Uint64(body)))
	case bodyKindUint64:
		if len(body) < 8 {
			return nil, fmt.Errorf("moor: truncated uint64 body")
		}
		return NewMessage(binary.LittleEndian.Uint64(body))
	case bodyKindFloat32:
		if len(body) < 4 {
			return nil, fmt.Errorf("moor: truncated float32 body")
		}
		return NewMessage(math.Float32frombits(binary.LittleEndian.Uint32(body)))
	case bodyKindFloat64:
		if len(body) < 8 {
			return nil, fmt.Errorf("moor: truncated float64 body")
		}
		return NewMessage(math.Float64frombits(binary.LittleEndian.Uint64(body)))
	case bodyKindBool:
		if len(body) < 1 {
			return nil, fmt.Errorf("moor: truncated bool body")
		}
		return NewMessage(body[0] != 0)
	case bodyKindUUID:
		var u uuid.UUID
		if err := u.UnmarshalBinary(body); err != nil {
			return nil, err
		}
		return NewMessage(u)
	case bodyKindTimestamp:
		var ts time.Time
		if err := ts.UnmarshalBinary(body); err != nil {
			return nil, err
		}
		return NewMessage(ts)
	case bodyKindBinary:
		return NewMessage(body)
	case bodyKindList:
		var list []any
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, err
		}
		return NewMessage(list)
	default:
		return nil, fmtErrorf(KindConfiguration, "unknown body kind %s", kind)
	}
}
