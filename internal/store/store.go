// Package store defines the interface for the embedded relational store
// (spec.md §4.1) shared by the memory engine, the code indexer, and the
// scheduler. There is exactly one writer implementation (sqlite); the
// interface exists so components and tests depend on behavior, not on
// the SQLite driver directly — the same separation BeadsLog draws
// between internal/storage and internal/storage/sqlite.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/untoldecay/matrix/internal/types"
)

// ErrNotInitialized is returned when a store operation is attempted
// before the store has been opened.
var ErrNotInitialized = errors.New("store: not initialized")

// Config configures the store.
type Config struct {
	Path        string // matrix.db path
	BusyTimeout int    // milliseconds
}

// RecallFilter narrows the solutions scanned during recall (§4.3).
type RecallFilter struct {
	ScopeFilter    types.Scope
	CategoryFilter types.Category
	MaxComplexity  int // 0 means unset
}

// Store is the single-writer embedded relational store.
type Store interface {
	// Repos
	UpsertRepo(ctx context.Context, repo *types.Repo) error
	GetRepoByPath(ctx context.Context, path string) (*types.Repo, error)
	GetRepo(ctx context.Context, id string) (*types.Repo, error)
	ListRepos(ctx context.Context) ([]*types.Repo, error)

	// Solutions
	InsertSolution(ctx context.Context, s *types.Solution) error
	GetSolution(ctx context.Context, id string) (*types.Solution, error)
	ScanSolutions(ctx context.Context, filter RecallFilter) ([]*types.Solution, error)
	UpdateSolutionScore(ctx context.Context, id string, newScore float64, outcome types.Outcome) error
	ApplyReward(ctx context.Context, id string, newScore float64, outcome types.Outcome, log *types.UsageLog) error
	SetPromotedToSkill(ctx context.Context, id, skill string) error
	TouchSolutionUse(ctx context.Context, ids []string) error
	FindSupersededBy(ctx context.Context, id string) (string, error)

	// Failures
	GetFailureBySignature(ctx context.Context, sig string) (*types.Failure, error)
	InsertFailure(ctx context.Context, f *types.Failure) error
	UpdateFailure(ctx context.Context, f *types.Failure) error
	ScanFailures(ctx context.Context) ([]*types.Failure, error)

	// UsageLog
	AppendUsageLog(ctx context.Context, log *types.UsageLog) error

	// Warnings
	InsertWarning(ctx context.Context, w *types.Warning) error
	DeleteWarning(ctx context.Context, id string) error
	ListWarnings(ctx context.Context, repoID string) ([]*types.Warning, error)
	FindWarning(ctx context.Context, wtype types.WarningType, target, ecosystem, repoID string) (*types.Warning, error)

	// Indexer bookkeeping
	ListRepoFiles(ctx context.Context, repoID string) ([]*types.RepoFile, error)
	UpsertRepoFile(ctx context.Context, f *types.RepoFile) (int64, error)
	DeleteRepoFile(ctx context.Context, repoID, filePath string) error
	ReplaceFileSymbolsAndImports(ctx context.Context, fileID int64, repoID string, symbols []*types.Symbol, imports []*types.Import) error

	// Query API (§4.10)
	FindDefinitions(ctx context.Context, repoID, name string, kind types.SymbolKind, file string) ([]*types.Symbol, error)
	ListExports(ctx context.Context, repoID, pathPrefix string) ([]*types.Symbol, error)
	SearchSymbols(ctx context.Context, repoID, q string, limit int) ([]*types.Symbol, error)
	GetFileImports(ctx context.Context, repoID, filePath string) ([]*types.Import, error)
	GetIndexStatus(ctx context.Context, repoID string) (files, symbols, imports int, lastIndexed string, err error)
	FindUncalledExports(ctx context.Context, repoID string) ([]*types.Symbol, error)

	// Scheduler
	InsertTask(ctx context.Context, t *types.Task) error
	DeleteTask(ctx context.Context, id string) error
	GetTask(ctx context.Context, id string) (*types.Task, error)
	ListTasks(ctx context.Context) ([]*types.Task, error)
	InsertExecution(ctx context.Context, e *types.Execution) error
	UpdateExecution(ctx context.Context, e *types.Execution) error
	ListExecutions(ctx context.Context, taskID string, limit int) ([]*types.Execution, error)

	// ApiCache
	GetCached(ctx context.Context, key string, ttlSeconds int64) ([]byte, bool, error)
	SetCached(ctx context.Context, key string, response []byte) error
	ReapExpiredCache(ctx context.Context, ttlSeconds int64) error

	// Lifecycle
	Close() error
	Path() string
	UnderlyingDB() *sql.DB
}
