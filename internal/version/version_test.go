package version

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/arkham/internal/models"
)

func TestParse_ValidRoundTrip(t *testing.T) {
	cases := map[string]string{
		"0.00":   "0.00",
		"1.0":    "1.00",
		"3.53":   "3.53",
		"3.5":    "3.05",
		"12.99":  "12.99",
		"100.07": "100.07",
	}
	for in, want := range cases {
		id, err := Parse(in)
		require.NoError(t, err, in)
		require.Equal(t, want, id.String(), in)
	}
}

func TestParse_AllMinorsRoundTrip(t *testing.T) {
	for minor := 0; minor <= MaxMinor; minor++ {
		text := fmt.Sprintf("7.%02d", minor)
		id, err := Parse(text)
		require.NoError(t, err)
		require.Equal(t, text, id.String())
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{
		"", "4", "1.2.3", "a.01", "1.b", "-1.00", "1.-1", "1.100", "1.", ".5", " 1.00", "1.00 ", "1,00", "+1.00",
	} {
		_, err := Parse(in)
		require.Error(t, err, "expected %q to be rejected", in)
		require.True(t, errors.Is(err, models.ErrInvalidVersion), in)

		var iv *models.InvalidVersionError
		require.ErrorAs(t, err, &iv)
		require.Equal(t, in, iv.Text)
	}
}

func TestIncrement(t *testing.T) {
	got, err := IncrementText("3.53", "minor")
	require.NoError(t, err)
	require.Equal(t, "3.54", got)

	got, err = IncrementText("3.99", "major")
	require.NoError(t, err)
	require.Equal(t, "4.00", got)

	got, err = IncrementText("3.08", "0")
	require.NoError(t, err)
	require.Equal(t, "3.09", got)

	got, err = IncrementText("3.08", "1")
	require.NoError(t, err)
	require.Equal(t, "4.00", got)

	got, err = IncrementText("3.08", "MAJOR")
	require.NoError(t, err)
	require.Equal(t, "4.00", got)
}

func TestIncrement_RejectsUnknownKind(t *testing.T) {
	_, err := IncrementText("3.53", "patch")
	var iv *models.InvalidVersionError
	require.ErrorAs(t, err, &iv)
	require.Equal(t, "Invalid update type", iv.Text)

	_, err = Increment(ID{Major: 1}, Kind(42))
	require.ErrorIs(t, err, models.ErrInvalidVersion)
}

func TestIncrement_MinorOverflowRejected(t *testing.T) {
	_, err := IncrementText("3.99", "minor")
	require.ErrorIs(t, err, models.ErrInvalidVersion)
	require.Contains(t, err.Error(), "minor overflow")
}

func TestIncrement_InvalidCurrent(t *testing.T) {
	_, err := IncrementText("3", "minor")
	require.ErrorIs(t, err, models.ErrInvalidVersion)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Minor ")
	require.NoError(t, err)
	require.Equal(t, Minor, k)
	require.Equal(t, "minor", k.String())

	k, err = ParseKind("1")
	require.NoError(t, err)
	require.Equal(t, Major, k)
	require.Equal(t, "major", k.String())
}
