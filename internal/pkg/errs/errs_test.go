//go:build unit

package errs

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMark(t *testing.T) {
	sentinel := New("session not found")
	cause := Wrap(errors.New("no rows"), "lookup failed")

	t.Run("mark is visible to stdlib errors.Is", func(t *testing.T) {
		err := Mark(cause, sentinel)
		assert.True(t, errors.Is(err, sentinel))
	})

	t.Run("cause chain stays intact", func(t *testing.T) {
		base := errors.New("no rows")
		err := Mark(Wrap(base, "lookup failed"), sentinel)
		assert.True(t, errors.Is(err, base))
		assert.Equal(t, "lookup failed: no rows", err.Error())
	})

	t.Run("nil error yields the mark itself", func(t *testing.T) {
		err := Mark(nil, sentinel)
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("marked mark chains resolve", func(t *testing.T) {
		outer := Mark(cause, Mark(errors.New("provider down"), sentinel))
		assert.True(t, errors.Is(outer, sentinel))
	})
}

func TestExtractStackLines(t *testing.T) {
	err := Mark(Wrap(errors.New("no rows"), "lookup failed"), New("session not found"))
	lines := ExtractStackLines(err, 5)
	require.NotEmpty(t, lines)
	assert.True(t, strings.Contains(lines[0], "lookup failed"), "verbose form comes from the cause")
	assert.LessOrEqual(t, len(lines), 5)
}
