package fault

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	err := Malformedf("roster.Load", "students.csv", 3, "expected %d fields, got %d", 4, 2)
	assert.Equal(t, "roster.Load: students.csv:3: malformed input: expected 4 fields, got 2", err.Error())

	err = E("", IO, "", os.ErrPermission)
	assert.Equal(t, "I/O error: permission denied", err.Error())
}

func TestKindClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		kind  Kind
		fatal bool
	}{
		{"malformed", Malformedf("op", "f", 1, "bad"), Malformed, true},
		{"wrapped malformed", fmt.Errorf("load: %w", Malformedf("op", "f", 1, "bad")), Malformed, true},
		{"io", E("copy", IO, "/tmp/x", os.ErrPermission), IO, false},
		{"plain", errors.New("boom"), Other, false},
		{"nil", nil, Other, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := E("remove", IO, "x", os.ErrNotExist)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEKeepsExisting(t *testing.T) {
	inner := E("extract", Extract, "a", errors.New("bad zip"))
	assert.Same(t, inner, E("", Extract, "", inner))
}
