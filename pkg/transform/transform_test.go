package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ib-77/stagepipe/pkg/gate"
)

func TestUppercase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"hello world", "HELLO WORLD"},
		{"Foo Bar", "FOO BAR"},
		{"ALREADY", "ALREADY"},
		{"mixed 123 _-!", "MIXED 123 _-!"},
		{"çé", "çé"}, // non-ASCII bytes pass through
		{"z{a`", "Z{A`"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Uppercase(tt.in), "input %q", tt.in)
	}
}

func TestReplace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"hello world", "hello_world"},
		{"  lead and trail  ", "__lead_and_trail__"},
		{"tab\there", "tab\there"},
		{"no_spaces", "no_spaces"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Replace(tt.in), "input %q", tt.in)
	}
}

func TestIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "hello world", "Foo Bar", "a b c d", "ÄÖ ü x"} {
		once := Uppercase(in)
		assert.Equal(t, once, Uppercase(once))

		once = Replace(in)
		assert.Equal(t, once, Replace(once))
	}
}

func TestFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A B", For(gate.Uppercased)("a b"))
	assert.Equal(t, "a_b", For(gate.Replaced)("a b"))
	assert.Equal(t, "a b", For(gate.Read)("a b"))
	assert.Equal(t, "a b", For(gate.Written)("a b"))
}
