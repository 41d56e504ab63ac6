// Package actions implements the arkham command flows on top of the store,
// build, artifact and git packages. Commands parse flags and render; actions
// do the work.
package actions

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dotcommander/arkham/internal/app"
	"github.com/dotcommander/arkham/internal/models"
	"github.com/dotcommander/arkham/internal/output"
	"github.com/dotcommander/arkham/internal/store"
)

// Env is what every flow runs against.
type Env struct {
	Workspace app.Workspace
	Settings  app.Settings
	Console   *output.Console
	Prompter  *Prompter
	// History is the publish history. Nil disables recording and lookups.
	History *store.History
}

func (e Env) infoStore() *store.InfoStore {
	return store.NewInfoStore(e.Workspace.InfoPath())
}

func (e Env) versionLog() *store.VersionLog {
	return store.NewVersionLog(e.Workspace.LogPath(), e.Workspace.LockPath())
}

// Prompter asks questions on an interactive stream.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the trimmed answer line. An empty answer
// yields def. Input that ends without an answer is an IOError.
func (p *Prompter) Ask(question, def string) (string, error) {
	if p == nil {
		return "", models.NewIOError("prompt", "", errors.New("no interactive input"))
	}
	_, _ = fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "", models.NewIOError("read answer", "", err)
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question. Only "y" and "yes" count as yes.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Ask(question, "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
