// Package pagination turns client supplied offset/limit values into bounded
// values that are safe to hand to the document store.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is used when the client does not send a limit.
	DefaultLimit int64 = 20
	// MinLimit and MaxLimit bound every resolved limit, inclusive.
	MinLimit int64 = 1
	MaxLimit int64 = 100
)

// Params is a resolved offset/limit pair. Only Resolve and Parse produce
// values that satisfy Offset >= 0 and MinLimit <= Limit <= MaxLimit.
type Params struct {
	Offset int64 `json:"offset"`
	Limit  int64 `json:"limit"`
}

// Resolve clamps the raw values. A nil pointer means the client did not
// send that parameter.
func Resolve(offset, limit *int64) Params {
	p := Params{Offset: 0, Limit: DefaultLimit}

	if offset != nil && *offset > 0 {
		p.Offset = *offset
	}

	if limit != nil {
		p.Limit = clamp(*limit, MinLimit, MaxLimit)
	}

	return p
}

// Parse resolves query-string values. Empty or non-numeric values are
// treated as absent; numbers beyond int64 are clamped like any other.
func Parse(offset, limit string) Params {
	return Resolve(parseInt(offset), parseInt(limit))
}

func parseInt(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		// v is saturated to the int64 bound; Resolve clamps it.
		return &v
	}
	if err != nil {
		return nil
	}
	return &v
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
