// Package session persists the per-session context file described in
// spec.md §6 — one JSON file per assistant session under
// sessions/session-<hex16>.json, named by paths.SessionFilename so a
// hostile session id can never escape the sessions directory. Entries
// older than 24h are treated as expired on read. Writes go through
// internal/lockfile.WriteAtomic, the same write-then-rename primitive
// the daemon registry BeadsLog grew this from uses for its own
// shared JSON state file.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/untoldecay/matrix/internal/lockfile"
	"github.com/untoldecay/matrix/internal/paths"
)

// TTL is how long a session context file remains valid after StartedAt.
const TTL = 24 * time.Hour

// Mode is the assistant interaction mode recorded at session start.
type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeAutonomous  Mode = "autonomous"
)

// Context is the per-session context file (spec.md §6).
type Context struct {
	SessionID string    `json:"sessionId"`
	Mode      Mode      `json:"mode"`
	StartedAt time.Time `json:"startedAt"`
	UserName  string    `json:"userName,omitempty"`
	RepoRoot  string    `json:"repoRoot,omitempty"`
	RepoID    string    `json:"repoId,omitempty"`
}

// ErrExpired is returned by Load when the context file exists but its
// TTL has elapsed.
type ErrExpired struct {
	SessionID string
	StartedAt time.Time
}

func (e *ErrExpired) Error() string {
	return fmt.Sprintf("session: context for %q expired (started %s)", e.SessionID, e.StartedAt.Format(time.RFC3339))
}

func pathFor(sessionID string) (string, error) {
	dir, err := paths.SessionsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, paths.SessionFilename(sessionID)), nil
}

// Save writes ctx to its session file, creating the sessions directory
// if needed, via lockfile.WriteAtomic so a crash mid-write can never
// leave a half-written context file for a later hook invocation to read.
func Save(ctx *Context) error {
	target, err := pathFor(ctx.SessionID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshal context: %w", err)
	}

	if err := lockfile.WriteAtomic(target, data, 0o600); err != nil {
		return fmt.Errorf("session: write context: %w", err)
	}
	return nil
}

// Load reads the context file for sessionID. It returns *ErrExpired
// (checkable with errors.As) if the file exists but TTL has elapsed;
// callers that only care about validity can treat any error as "no
// usable context."
func Load(sessionID string) (*Context, error) {
	p, err := pathFor(sessionID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}

	var ctx Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("session: unmarshal context: %w", err)
	}
	if time.Since(ctx.StartedAt) > TTL {
		return &ctx, &ErrExpired{SessionID: ctx.SessionID, StartedAt: ctx.StartedAt}
	}
	return &ctx, nil
}

// Delete removes the session context file, if any. Deleting a
// nonexistent file is not an error.
func Delete(sessionID string) error {
	p, err := pathFor(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: delete context: %w", err)
	}
	return nil
}

// Reap deletes every session context file older than TTL. It is meant
// to be called opportunistically (e.g. from matrix doctor or session
// start), mirroring the store's own opportunistic api_cache reaping.
func Reap() (int, error) {
	dir, err := paths.SessionsDir()
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("session: read sessions dir: %w", err)
	}

	var reaped int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		var ctx Context
		if err := json.Unmarshal(data, &ctx); err != nil {
			continue
		}
		if time.Since(ctx.StartedAt) > TTL {
			if err := os.Remove(full); err == nil {
				reaped++
			}
		}
	}
	return reaped, nil
}
