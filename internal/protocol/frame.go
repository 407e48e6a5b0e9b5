package protocol

import (
	"fmt"

	"github.com/mcoot/bluetrace-go/internal/model"
)

// Contact-log records and beacon payloads are fixed-size frames: the upload
// stream is not length-prefixed, so both ends rely on a constant record size.
// Changing the record layout requires a protocol version bump.
const (
	// ContactRecordSize is temp ID + space + start + space + end.
	ContactRecordSize = TempIDLength + 1 + TimestampLength + 1 + TimestampLength

	// BeaconPayloadSize is a contact record plus a space and a one-byte
	// protocol version.
	BeaconPayloadSize = ContactRecordSize + 2
)

// EncodeContactRecord renders an entry as a wire frame.
func EncodeContactRecord(entry model.ContactLogEntry) ([]byte, error) {
	if len(entry.TempID) != TempIDLength {
		return nil, fmt.Errorf("%w: temp ID length %d", model.ErrMalformedRecord, len(entry.TempID))
	}
	if len(entry.Start) != TimestampLength || len(entry.End) != TimestampLength {
		return nil, fmt.Errorf("%w: bad timestamp length", model.ErrMalformedRecord)
	}
	frame := make([]byte, 0, ContactRecordSize)
	frame = append(frame, entry.TempID...)
	frame = append(frame, ' ')
	frame = append(frame, entry.Start...)
	frame = append(frame, ' ')
	frame = append(frame, entry.End...)
	return frame, nil
}

// DecodeContactRecord parses a wire frame back into an entry. Timestamps are
// checked for shape only; the log's internal consistency is not validated.
func DecodeContactRecord(frame []byte) (model.ContactLogEntry, error) {
	if len(frame) != ContactRecordSize {
		return model.ContactLogEntry{}, fmt.Errorf("%w: frame length %d", model.ErrMalformedRecord, len(frame))
	}
	entry := model.ContactLogEntry{
		TempID: string(frame[:TempIDLength]),
		Start:  string(frame[TempIDLength+1 : TempIDLength+1+TimestampLength]),
		End:    string(frame[TempIDLength+2+TimestampLength:]),
	}
	if frame[TempIDLength] != ' ' || frame[TempIDLength+1+TimestampLength] != ' ' {
		return model.ContactLogEntry{}, fmt.Errorf("%w: missing separators", model.ErrMalformedRecord)
	}
	return entry, nil
}

// FinishedFrame returns the sentinel frame terminating an upload stream,
// padded to the constant record size.
func FinishedFrame() []byte {
	frame := make([]byte, ContactRecordSize)
	for i := range frame {
		frame[i] = ' '
	}
	copy(frame, FinishedContactLog)
	return frame
}

// IsFinishedFrame reports whether a received frame is the upload sentinel.
func IsFinishedFrame(frame []byte) bool {
	if len(frame) != ContactRecordSize {
		return false
	}
	if string(frame[:len(FinishedContactLog)]) != string(FinishedContactLog) {
		return false
	}
	for _, b := range frame[len(FinishedContactLog):] {
		if b != ' ' {
			return false
		}
	}
	return true
}

// EncodeBeaconPayload renders an entry plus the protocol version as a beacon
// datagram payload.
func EncodeBeaconPayload(entry model.ContactLogEntry) ([]byte, error) {
	record, err := EncodeContactRecord(entry)
	if err != nil {
		return nil, err
	}
	payload := append(record, ' ', BeaconVersion)
	return payload, nil
}

// DecodeBeaconPayload parses a beacon datagram payload, returning the entry
// and the sender's protocol version.
func DecodeBeaconPayload(payload []byte) (model.ContactLogEntry, byte, error) {
	if len(payload) != BeaconPayloadSize {
		return model.ContactLogEntry{}, 0, fmt.Errorf("%w: payload length %d", model.ErrMalformedRecord, len(payload))
	}
	entry, err := DecodeContactRecord(payload[:ContactRecordSize])
	if err != nil {
		return model.ContactLogEntry{}, 0, err
	}
	return entry, payload[BeaconPayloadSize-1], nil
}
