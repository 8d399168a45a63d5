// Package transform holds the pure per-line functions applied by each stage.
package transform

import "github.com/ib-77/stagepipe/pkg/gate"

// Func rewrites one line's content.
type Func func(string) string

func Identity(s string) string {
	return s
}

// Uppercase maps ASCII a-z to A-Z and leaves every other byte alone.
func Uppercase(s string) string {
	return mapBytes(s, func(b byte) byte {
		if b >= 'a' && b <= 'z' {
			return b - ('a' - 'A')
		}
		return b
	})
}

// Replace maps the space character to an underscore.
func Replace(s string) string {
	return mapBytes(s, func(b byte) byte {
		if b == ' ' {
			return '_'
		}
		return b
	})
}

// For returns the function applied by stage s. Read and Write move content
// through unchanged.
func For(s gate.Stage) Func {
	switch s {
	case gate.Uppercased:
		return Uppercase
	case gate.Replaced:
		return Replace
	default:
		return Identity
	}
}

func mapBytes(s string, f func(byte) byte) string {
	var buf []byte
	for i := 0; i < len(s); i++ {
		b := f(s[i])
		if b == s[i] {
			continue
		}
		if buf == nil {
			buf = []byte(s)
		}
		buf[i] = b
	}
	if buf == nil {
		return s
	}
	return string(buf)
}
