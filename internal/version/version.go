// Package version parses, formats and increments the two-part MAJOR.MINOR
// version identifiers tracked by arkham.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dotcommander/arkham/internal/models"
)

// MaxMinor is the largest minor number a valid identifier may carry.
const MaxMinor = 99

// ID is an ordered (major, minor) pair.
type ID struct {
	Major uint64
	Minor uint64
}

// String returns the canonical "{major}.{minor:02}" form.
func (v ID) String() string {
	return fmt.Sprintf("%d.%02d", v.Major, v.Minor)
}

// Parse validates text and returns its ID. Valid text has exactly one '.'
// separating a non-negative integer and a one or two digit minor <= 99.
func Parse(text string) (ID, error) {
	invalid := &models.InvalidVersionError{Text: text}

	major, minor, ok := strings.Cut(text, ".")
	if !ok || strings.Contains(minor, ".") {
		return ID{}, invalid
	}
	if !isDigits(major) || !isDigits(minor) || len(minor) > 2 {
		return ID{}, invalid
	}

	maj, err := strconv.ParseUint(major, 10, 64)
	if err != nil {
		return ID{}, invalid
	}
	mnr, err := strconv.ParseUint(minor, 10, 64)
	if err != nil || mnr > MaxMinor {
		return ID{}, invalid
	}
	return ID{Major: maj, Minor: mnr}, nil
}

// Validate reports whether text is a valid identifier.
func Validate(text string) error {
	_, err := Parse(text)
	return err
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Kind selects which part of the identifier an increment bumps.
type Kind int

const (
	Minor Kind = iota
	Major
)

func (k Kind) String() string {
	if k == Major {
		return "major"
	}
	return "minor"
}

// ParseKind accepts "major"/"1" and "minor"/"0", case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major", "1":
		return Major, nil
	case "minor", "0":
		return Minor, nil
	default:
		return Minor, &models.InvalidVersionError{Text: "Invalid update type"}
	}
}

// Increment returns the identifier following current. A minor bump past
// MaxMinor is rejected rather than promoted; the caller must ask for a major
// bump explicitly.
func Increment(current ID, kind Kind) (ID, error) {
	switch kind {
	case Major:
		return ID{Major: current.Major + 1}, nil
	case Minor:
		if current.Minor >= MaxMinor {
			return ID{}, &models.InvalidVersionError{
				Text: fmt.Sprintf("%s (minor overflow, use a major update)", current),
			}
		}
		return ID{Major: current.Major, Minor: current.Minor + 1}, nil
	default:
		return ID{}, &models.InvalidVersionError{Text: "Invalid update type"}
	}
}

// IncrementText parses current, bumps it according to kind ("major", "minor",
// "1" or "0") and returns the canonical text.
func IncrementText(current, kind string) (string, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return "", err
	}
	id, err := Parse(current)
	if err != nil {
		return "", err
	}
	next, err := Increment(id, k)
	if err != nil {
		return "", err
	}
	return next.String(), nil
}
