package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dotcommander/arkham/internal/models"
	"github.com/dotcommander/arkham/internal/store"
)

// LogDateLayout is the layout of build_date in the version log.
const LogDateLayout = "2006-01-02 15:04:05"

// Bridge snapshots the project tree with git and appends the commit to the
// version log.
type Bridge struct {
	root     string
	git      string
	executor CommandExecutor
	log      *store.VersionLog
	now      func() time.Time
	backoff  func() backoff.BackOff
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithExecutor replaces the os/exec executor.
func WithExecutor(e CommandExecutor) BridgeOption {
	return func(b *Bridge) { b.executor = e }
}

// WithNow overrides the clock used for the logged build date.
func WithNow(now func() time.Time) BridgeOption {
	return func(b *Bridge) { b.now = now }
}

// WithBackOff overrides the retry policy for index.lock contention.
func WithBackOff(f func() backoff.BackOff) BridgeOption {
	return func(b *Bridge) { b.backoff = f }
}

// NewBridge returns a Bridge that runs gitCommand in root and records
// commits in log.
func NewBridge(root, gitCommand string, log *store.VersionLog, opts ...BridgeOption) *Bridge {
	if gitCommand == "" {
		gitCommand = "git"
	}
	b := &Bridge{
		root:     root,
		git:      gitCommand,
		executor: NewExecExecutor(),
		log:      log,
		now:      time.Now,
		backoff:  defaultBackOff,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 5 * time.Second
	return b
}

// Commit stages every change, commits it as "v_{version}" and appends a log
// row with message, builder and the resulting HEAD. When the tree is clean
// the existing HEAD is recorded.
func (b *Bridge) Commit(ctx context.Context, version, message, builder string) (*models.VersionLogEntry, error) {
	if err := b.ensureRepo(ctx); err != nil {
		return nil, err
	}

	if _, err := b.run(ctx, "add", "."); err != nil {
		return nil, &models.BackupError{Cause: "git add failed", Err: err}
	}

	if _, err := b.run(ctx, "commit", "-m", "v_"+version); err != nil {
		if !nothingToCommit(err) {
			return nil, &models.BackupError{Cause: "git commit failed", Err: err}
		}
		slog.Warn("nothing to commit, recording current HEAD", "root", b.root, "version", version)
	}

	head, err := b.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return nil, &models.BackupError{Cause: "Failed to get commit ID", Err: err}
	}

	entry := models.VersionLogEntry{
		Version:    version,
		LogMessage: message,
		BuildDate:  b.now().Format(LogDateLayout),
		Builder:    builder,
		CommitID:   strings.TrimSpace(head),
	}
	if err := b.log.Append(entry); err != nil {
		return nil, &models.BackupError{Cause: "Failed to write version log", Err: err}
	}
	return &entry, nil
}

// ensureRepo initializes a repository in the root when none exists.
func (b *Bridge) ensureRepo(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(b.root, ".git")); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return &models.BackupError{Cause: "inspect repository", Err: err}
	}
	slog.Info("initializing git repository", "root", b.root)
	if _, err := b.run(ctx, "init"); err != nil {
		return &models.BackupError{Cause: "git init failed", Err: err}
	}
	return nil
}

// run executes one git command, retrying while another process holds the
// index lock.
func (b *Bridge) run(ctx context.Context, args ...string) (string, error) {
	var out string
	op := func() error {
		var err error
		slog.Debug("git command", "args", args, "root", b.root)
		out, err = b.executor.Run(ctx, b.root, b.git, args...)
		if err == nil {
			return nil
		}
		if isIndexLocked(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	if err := backoff.Retry(op, backoff.WithContext(b.backoff(), ctx)); err != nil {
		return out, fmt.Errorf("git %s: %w", args[0], err)
	}
	return out, nil
}

func isIndexLocked(err error) bool {
	return strings.Contains(err.Error(), "index.lock")
}

func nothingToCommit(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "nothing to commit") ||
		strings.Contains(msg, "nothing added to commit")
}
