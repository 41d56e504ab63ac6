package artifact

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"
)

// Sentinel lines delimiting the metadata block appended to an executable.
const (
	MarkerStart = "--VERSION_INFO_START--"
	MarkerEnd   = "--VERSION_INFO_END--"
)

// DateLayout is the layout of the embedded build date.
const DateLayout = "2006-01-02"

// minStringLen matches the default of the strings(1) tool.
const minStringLen = 4

// Metadata is the content of an embedded block.
type Metadata struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
}

// StripMetadata truncates content at the first occurrence of MarkerStart.
// The search is over raw bytes; content without a marker is returned as is.
func StripMetadata(content []byte) []byte {
	if pos := bytes.Index(content, []byte(MarkerStart)); pos >= 0 {
		return content[:pos]
	}
	return content
}

// MetadataBlock renders the block appended after the executable bytes.
func MetadataBlock(version string, buildDate time.Time) []byte {
	return []byte(fmt.Sprintf("\n%s\nVersion: %s\nBuild Date: %s\n%s\n",
		MarkerStart, version, buildDate.Format(DateLayout), MarkerEnd))
}

// EmbedMetadata strips any previous block and appends a fresh one, so a
// republished artifact always carries exactly one block.
func EmbedMetadata(content []byte, version string, buildDate time.Time) []byte {
	stripped := StripMetadata(content)
	block := MetadataBlock(version, buildDate)
	out := make([]byte, 0, len(stripped)+len(block))
	out = append(out, stripped...)
	return append(out, block...)
}

// ExtractStrings returns the runs of at least minLen printable ASCII bytes
// in b, the way strings(1) does.
func ExtractStrings(b []byte, minLen int) []string {
	var (
		out   []string
		start = -1
	)
	flush := func(end int) {
		if start >= 0 && end-start >= minLen {
			out = append(out, string(b[start:end]))
		}
		start = -1
	}
	for i, c := range b {
		if c == '\t' || (c >= 0x20 && c < 0x7f) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(b))
	return out
}

// ContainsVersion reports whether the printable strings of content include
// the "Version: {version}" line.
func ContainsVersion(content []byte, version string) bool {
	want := "Version: " + version
	for _, s := range ExtractStrings(content, minStringLen) {
		if s == want {
			return true
		}
	}
	return false
}

// ReadMetadata parses the embedded block of the file at path. ok is false
// when the file carries no block.
func ReadMetadata(path string) (meta Metadata, ok bool, err error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path is a workspace artifact
	if err != nil {
		return Metadata{}, false, err
	}
	meta, ok = ParseMetadata(content)
	return meta, ok, nil
}

// ParseMetadata parses the first embedded block in content.
func ParseMetadata(content []byte) (Metadata, bool) {
	pos := bytes.Index(content, []byte(MarkerStart))
	if pos < 0 {
		return Metadata{}, false
	}
	block := string(content[pos+len(MarkerStart):])
	if end := strings.Index(block, MarkerEnd); end >= 0 {
		block = block[:end]
	}

	var meta Metadata
	for _, line := range strings.Split(block, "\n") {
		if v, found := strings.CutPrefix(line, "Version: "); found {
			meta.Version = v
		} else if v, found := strings.CutPrefix(line, "Build Date: "); found {
			meta.BuildDate = v
		}
	}
	return meta, meta.Version != ""
}
