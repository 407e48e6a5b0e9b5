package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bluetrace-go/internal/model"
)

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2021, 1, 2, 13, 4, 5, 0, time.UTC)

	formatted := FormatTimestamp(ts)
	assert.Equal(t, "02/01/21 13:04:05", formatted)
	assert.Len(t, formatted, TimestampLength)

	parsed, err := ParseTimestamp(formatted)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
}

func TestContactRecordRoundTrip(t *testing.T) {
	entry := model.ContactLogEntry{
		TempID: "00000000000000000001",
		Start:  "01/01/21 00:00:00",
		End:    "01/01/21 00:05:00",
	}

	frame, err := EncodeContactRecord(entry)
	require.NoError(t, err)
	assert.Len(t, frame, ContactRecordSize)

	decoded, err := DecodeContactRecord(frame)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestEncodeContactRecordRejectsBadLengths(t *testing.T) {
	_, err := EncodeContactRecord(model.ContactLogEntry{
		TempID: "123",
		Start:  "01/01/21 00:00:00",
		End:    "01/01/21 00:05:00",
	})
	assert.ErrorIs(t, err, model.ErrMalformedRecord)

	_, err = EncodeContactRecord(model.ContactLogEntry{
		TempID: "00000000000000000001",
		Start:  "bad",
		End:    "01/01/21 00:05:00",
	})
	assert.ErrorIs(t, err, model.ErrMalformedRecord)
}

func TestDecodeContactRecordRejectsBadFrame(t *testing.T) {
	_, err := DecodeContactRecord([]byte("too short"))
	assert.ErrorIs(t, err, model.ErrMalformedRecord)
}

func TestFinishedFrame(t *testing.T) {
	frame := FinishedFrame()
	assert.Len(t, frame, ContactRecordSize)
	assert.True(t, IsFinishedFrame(frame))

	// A real record must never be mistaken for the sentinel.
	record, err := EncodeContactRecord(model.ContactLogEntry{
		TempID: "00000000000000000001",
		Start:  "01/01/21 00:00:00",
		End:    "01/01/21 00:05:00",
	})
	require.NoError(t, err)
	assert.False(t, IsFinishedFrame(record))
}

func TestBeaconPayloadRoundTrip(t *testing.T) {
	entry := model.ContactLogEntry{
		TempID: "12345678901234567890",
		Start:  "01/01/21 00:00:00",
		End:    "01/01/21 00:15:00",
	}

	payload, err := EncodeBeaconPayload(entry)
	require.NoError(t, err)
	assert.Len(t, payload, BeaconPayloadSize)

	decoded, version, err := DecodeBeaconPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
	assert.Equal(t, byte(BeaconVersion), version)
}

func TestDecodeBeaconPayloadRejectsTruncated(t *testing.T) {
	_, _, err := DecodeBeaconPayload([]byte("nope"))
	assert.ErrorIs(t, err, model.ErrMalformedRecord)
}
