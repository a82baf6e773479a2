package log

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLogAttrWire(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		wantType string
		wantVal  string
	}{
		{
			name:     "string",
			attr:     slog.String("key", "value"),
			wantType: "string",
			wantVal:  "value",
		},
		{
			name:     "int64",
			attr:     slog.Int64("key", 123),
			wantType: "int64",
			wantVal:  "123",
		},
		{
			name:     "bool",
			attr:     slog.Bool("key", true),
			wantType: "bool",
			wantVal:  "true",
		},
		{
			name:     "float64",
			attr:     slog.Float64("key", 1.23),
			wantType: "float64",
			wantVal:  "1.230000",
		},
		{
			name:     "time",
			attr:     slog.Time("key", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			wantType: "time",
			wantVal:  "2024-01-01T00:00:00Z",
		},
		{
			name:     "duration",
			attr:     slog.Duration("key", 1*time.Hour),
			wantType: "duration",
			wantVal:  "1h0m0s",
		},
		{
			name:     "error",
			attr:     slog.Any("key", errors.New("test error")),
			wantType: "error",
			wantVal:  "test error",
		},
		{
			name:     "nil",
			attr:     slog.Any("key", nil),
			wantType: "any",
			wantVal:  "<nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := toLogAttrWire(tt.attr)
			assert.Equal(t, tt.attr.Key, wire.Key)
			assert.Equal(t, tt.wantType, wire.Type)
			assert.Equal(t, tt.wantVal, wire.Value)
		})
	}
}

func TestToLogAttrWire_JSON(t *testing.T) {
	// Test structured object that should be serialized as JSON
	type MyStruct struct {
		Field string `json:"field"`
	}
	obj := MyStruct{Field: "data"}
	attr := slog.Any("key", obj)

	wire := toLogAttrWire(attr)
	assert.Equal(t, "key", wire.Key)
	assert.Equal(t, "json", wire.Type)

	var decoded MyStruct
	err := json.Unmarshal([]byte(wire.Value), &decoded)
	require.NoError(t, err)
	assert.Equal(t, obj, decoded)
}

func TestToLogAttrWire_LogValuer(t *testing.T) {
	// Test types that implement LogValuer
	attr := slog.Any("key", logValuer{val: "resolved"})
	wire := toLogAttrWire(attr)

	assert.Equal(t, "key", wire.Key)
	assert.Equal(t, "string", wire.Type)
	assert.Equal(t, "resolved", wire.Value)
}

type logValuer struct {
	val string
}

func (l logValuer) LogValue() slog.Value {
	return slog.StringValue(l.val)
}

func TestNewHandler_Defaults(t *testing.T) {
	h := NewHandler()
	assert.NotNil(t, h)
	// Check default level via Enabled
	assert.True(t, h.Enabled(context.TODO(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.TODO(), slog.LevelDebug))
}

func TestNewHandler_Options(t *testing.T) {
	h := NewHandler(
		WithLevel(slog.LevelDebug),
		WithSource(true),
	)
	assert.NotNil(t, h)
	assert.True(t, h.Enabled(context.TODO(), slog.LevelDebug))
	assert.True(t, h.opts.addSource)
}

func TestHandler_ToWire(t *testing.T) {
	h := NewHandler().WithAttrs([]slog.Attr{slog.String("export", "hello")}).(*WasmLogHandler)

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	record := slog.NewRecord(ts, slog.LevelWarn, "bad input", 0)
	record.AddAttrs(slog.Int("bytes", 3))

	wire := h.toWire(record)
	assert.Equal(t, "WARN", wire.Level)
	assert.Equal(t, "bad input", wire.Message)
	assert.Equal(t, ts, wire.Timestamp)
	assert.Empty(t, wire.Source)
	require.Len(t, wire.Attrs, 2)
	assert.Equal(t, "export", wire.Attrs[0].Key)
	assert.Equal(t, "bytes", wire.Attrs[1].Key)
	assert.Equal(t, "3", wire.Attrs[1].Value)
}

func TestHandler_WithAttrsDoesNotMutateParent(t *testing.T) {
	parent := NewHandler()
	child := parent.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*WasmLogHandler)

	assert.Empty(t, parent.attrs)
	assert.Len(t, child.attrs, 1)
	assert.NotSame(t, parent, parent.WithGroup("g"))
}

func TestLogMessageWire_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, LogMessageWire{Level: "ERROR"}.SlogLevel())
	assert.Equal(t, slog.LevelDebug, LogMessageWire{Level: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogMessageWire{Level: "nonsense"}.SlogLevel())
}

func TestLogMessageWire_Args(t *testing.T) {
	msg := LogMessageWire{Attrs: []LogAttrWire{
		{Key: "a", Type: "string", Value: "1"},
		{Key: "b", Type: "int64", Value: "2"},
	}}
	assert.Equal(t, []any{"a", "1", "b", "2"}, msg.Args())

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded LogMessageWire
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, msg.Attrs, decoded.Attrs)
}
