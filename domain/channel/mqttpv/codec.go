package mqttpv

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/soocke/pv-viewer-go/domain/channel"
)

// wireValue is the msgpack payload of one channel update.
type wireValue struct {
	Value []float64 `msgpack:"value"`
	TS    int64     `msgpack:"ts"` // unix nanoseconds, 0 when unknown
}

// Encode serialises a channel value for publishing.
func Encode(v channel.Value) ([]byte, error) {
	w := wireValue{Value: v.Data}
	if !v.Timestamp.IsZero() {
		w.TS = v.Timestamp.UnixNano()
	}
	b, err := msgpack.Marshal(&w)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal channel value: %w", err)
	}
	return b, nil
}

// Decode parses a payload produced by Encode.
func Decode(b []byte) (channel.Value, error) {
	var w wireValue
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return channel.Value{}, fmt.Errorf("failed to unmarshal channel value: %w", err)
	}
	v := channel.Value{Data: w.Value}
	if w.TS != 0 {
		v.Timestamp = time.Unix(0, w.TS)
	}
	return v, nil
}
