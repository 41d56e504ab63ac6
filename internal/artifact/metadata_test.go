package artifact

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedDate = time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)

func TestMetadataBlock_ExactShape(t *testing.T) {
	got := string(MetadataBlock("3.53", fixedDate))
	require.Equal(t, "\n--VERSION_INFO_START--\nVersion: 3.53\nBuild Date: 2026-10-19\n--VERSION_INFO_END--\n", got)
}

func TestStripMetadata(t *testing.T) {
	bin := []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01, 0xff}

	require.Equal(t, bin, StripMetadata(bin))

	// The newline before the start marker belongs to the content.
	tagged := EmbedMetadata(bin, "1.00", fixedDate)
	require.Equal(t, append(append([]byte{}, bin...), '\n'), StripMetadata(tagged))

	// Marker search is over raw bytes, including non-UTF-8 content.
	raw := append([]byte{0xfe, 0xfe}, []byte(MarkerStart+"trailing")...)
	require.Equal(t, []byte{0xfe, 0xfe}, StripMetadata(raw))
}

func TestEmbedMetadata_ReplacesPreviousBlock(t *testing.T) {
	bin := []byte("\x00\x01binary-payload\x02")

	once := EmbedMetadata(bin, "1.00", fixedDate)
	twice := EmbedMetadata(once, "1.01", fixedDate)

	require.Equal(t, 1, bytes.Count(twice, []byte(MarkerStart)))
	require.Equal(t, 1, bytes.Count(twice, []byte(MarkerEnd)))
	require.True(t, ContainsVersion(twice, "1.01"))
	require.False(t, ContainsVersion(twice, "1.00"))
	require.True(t, bytes.HasPrefix(twice, bin))
}

func TestEmbedMetadata_RepublishGrowsOneBytePerCycle(t *testing.T) {
	bin := []byte("\x7fELF\x00payload")
	content := EmbedMetadata(bin, "1.00", fixedDate)
	blockLen := len(MetadataBlock("1.00", fixedDate))
	require.Len(t, content, len(bin)+blockLen)

	for cycle := 1; cycle <= 3; cycle++ {
		content = EmbedMetadata(content, "1.00", fixedDate)
		require.Len(t, content, len(bin)+cycle+blockLen)
		require.Equal(t, 1, bytes.Count(content, []byte(MarkerStart)))
		require.True(t, ContainsVersion(content, "1.00"))
	}
}

func TestExtractStrings(t *testing.T) {
	b := []byte("ab\x00abcd\x01\x02hello world\x00xyz\tq")
	require.Equal(t, []string{"abcd", "hello world", "xyz\tq"}, ExtractStrings(b, 4))
	require.Empty(t, ExtractStrings([]byte{0, 1, 2}, 4))
}

func TestContainsVersion_ExactMatch(t *testing.T) {
	content := EmbedMetadata([]byte{0x00}, "1.10", fixedDate)
	require.True(t, ContainsVersion(content, "1.10"))
	require.False(t, ContainsVersion(content, "1.1"))
	require.False(t, ContainsVersion([]byte("no block here"), "1.10"))
}

func TestReadMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app")
	require.NoError(t, os.WriteFile(path, EmbedMetadata([]byte{0x00, 0x01}, "2.05", fixedDate), 0o644))

	meta, ok, err := ReadMetadata(path)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Metadata{Version: "2.05", BuildDate: "2026-10-19"}, meta)

	plain := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(plain, []byte("nothing"), 0o644))
	_, ok, err = ReadMetadata(plain)
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = ReadMetadata(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
