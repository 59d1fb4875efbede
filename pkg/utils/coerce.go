package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ParseLooseBool reads the boolean forms clients send in query strings and
// multipart bodies. Only "true" (any case) and "1" are true.
func ParseLooseBool(raw string) bool {
	v := strings.TrimSpace(raw)
	return strings.EqualFold(v, "true") || v == "1"
}

// ParseIntOr returns the integer value of raw, or fallback when raw is empty
// or not a number. Fractional values are truncated and values beyond the
// int32 range saturate, so callers can still clamp them.
func ParseIntOr(raw string, fallback int) int {
	v := strings.TrimSpace(raw)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fallback
	}
	switch {
	case math.IsNaN(f):
		return fallback
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
