package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Timestamp is a point in time that travels as fractional Unix seconds, the
// representation every agent already emits. Decoding also accepts RFC3339
// strings and numeric strings.
type Timestamp struct {
	time.Time
}

// At wraps t.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// FromUnixSeconds converts fractional seconds.
func FromUnixSeconds(sec float64) Timestamp {
	whole, frac := math.Modf(sec)
	return Timestamp{Time: time.Unix(int64(whole), int64(frac*1e9)).UTC()}
}

// UnixSeconds returns the fractional Unix seconds of t.
func (t Timestamp) UnixSeconds() float64 {
	return float64(t.UnixNano()) / 1e9
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(t.UnixSeconds(), 'f', 6, 64)), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return t.parseString(s)
	}
	sec, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*t = FromUnixSeconds(sec)
	return nil
}

func (t *Timestamp) parseString(s string) error {
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		*t = FromUnixSeconds(sec)
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", s, err)
	}
	*t = Timestamp{Time: parsed}
	return nil
}
