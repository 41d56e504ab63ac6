package store

import (
	"strconv"
	"strings"

	"github.com/dotcommander/arkham/internal/models"
)

// logHeader is the fixed first line of the version log.
const logHeader = "version_name,version_log,build_date,built_by,commit_id"

// logFieldCount is the number of columns every data row must carry.
const logFieldCount = 5

// EncodeRow renders an entry as one CSV line without the trailing newline.
// Message, builder and commit are always quoted so a comma in free text can
// never shift columns; version and date are written bare. Line breaks in
// quoted fields become spaces, since a row is exactly one line.
func EncodeRow(e models.VersionLogEntry) string {
	return strings.Join([]string{
		e.Version,
		quoteField(e.LogMessage),
		e.BuildDate,
		quoteField(e.Builder),
		quoteField(e.CommitID),
	}, ",")
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(lineBreaks.Replace(s), `"`, `""`) + `"`
}

// SplitRow splits a CSV line on commas outside quotes. The inside-quotes flag
// toggles on every '"', so a doubled quote leaves it unchanged. Each field is
// then trimmed of whitespace and one enclosing quote pair, and doubled quotes
// are collapsed.
func SplitRow(line string) []string {
	var (
		fields   []string
		start    int
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				fields = append(fields, cleanField(line[start:i]))
				start = i + 1
			}
		}
	}
	return append(fields, cleanField(line[start:]))
}

func cleanField(raw string) string {
	f := strings.TrimSpace(raw)
	if len(f) >= 2 && f[0] == '"' && f[len(f)-1] == '"' {
		f = f[1 : len(f)-1]
	}
	return strings.ReplaceAll(f, `""`, `"`)
}

// ParseRow splits line and checks it yields exactly five fields. lineNum is
// the 1-based file line used in the corruption message.
func ParseRow(line string, lineNum int) ([]string, error) {
	fields := SplitRow(line)
	if len(fields) != logFieldCount {
		return fields, &models.CorruptVersionInfoError{
			Line:   lineNum,
			Detail: "Expected 5 fields, found " + strconv.Itoa(len(fields)),
		}
	}
	return fields, nil
}

func entryFromFields(f []string) models.VersionLogEntry {
	return models.VersionLogEntry{
		Version:    f[0],
		LogMessage: f[1],
		BuildDate:  f[2],
		Builder:    f[3],
		CommitID:   f[4],
	}
}
