package domain

import (
	"strconv"
	"strings"
)

// FormatResolution renders a WxH resolution token.
func FormatResolution(width, height int) string {
	return strconv.Itoa(width) + "x" + strconv.Itoa(height)
}

// FormatSeconds renders a duration in seconds without trailing zeros.
func FormatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', -1, 64)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// JoinNonEmpty joins the non-empty values with sep.
func JoinNonEmpty(sep string, values ...string) string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}
