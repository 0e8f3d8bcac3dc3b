// Package types defines the data model of spec.md §3: the entities every
// store, memory-engine, indexer, and scheduler operation reads and writes.
package types

import "time"

// Scope is the visibility class of a Solution.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeStack  Scope = "stack"
	ScopeRepo   Scope = "repo"
)

// Category classifies the kind of change a Solution represents.
type Category string

const (
	CategoryBugfix       Category = "bugfix"
	CategoryFeature      Category = "feature"
	CategoryRefactor     Category = "refactor"
	CategoryConfig       Category = "config"
	CategoryPattern      Category = "pattern"
	CategoryOptimization Category = "optimization"
)

// ErrorType classifies a recorded Failure.
type ErrorType string

const (
	ErrorRuntime ErrorType = "runtime"
	ErrorBuild   ErrorType = "build"
	ErrorTest    ErrorType = "test"
	ErrorTypeErr ErrorType = "type"
	ErrorOther   ErrorType = "other"
)

// Outcome is the result of applying a stored Solution, recorded in a
// UsageLog row and fed into the reward update rule.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
	OutcomeSkipped Outcome = "skipped"
)

// WarningType distinguishes a file-glob grudge from a package grudge.
type WarningType string

const (
	WarningFile    WarningType = "file"
	WarningPackage WarningType = "package"
)

// Severity is how strongly a Warning should be surfaced.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityBlock Severity = "block"
)

// SymbolKind enumerates the kinds of definitions the indexer extracts.
type SymbolKind string

const (
	SymbolFunction  SymbolKind = "function"
	SymbolClass     SymbolKind = "class"
	SymbolInterface SymbolKind = "interface"
	SymbolType      SymbolKind = "type"
	SymbolEnum      SymbolKind = "enum"
	SymbolVariable  SymbolKind = "variable"
	SymbolConst     SymbolKind = "const"
	SymbolMethod    SymbolKind = "method"
	SymbolProperty  SymbolKind = "property"
	SymbolNamespace SymbolKind = "namespace"
)

// ExecutionStatus is the terminal or in-flight state of a scheduled run.
type ExecutionStatus string

const (
	ExecRunning ExecutionStatus = "running"
	ExecSuccess ExecutionStatus = "success"
	ExecFailure ExecutionStatus = "failure"
	ExecTimeout ExecutionStatus = "timeout"
	ExecSkipped ExecutionStatus = "skipped"
)

// TriggeredBy distinguishes a scheduled firing from a manual `matrix dreamer run`.
type TriggeredBy string

const (
	TriggeredSchedule TriggeredBy = "schedule"
	TriggeredManual   TriggeredBy = "manual"
)

// Repo describes an indexable project (§3).
type Repo struct {
	ID                  string
	Name                string
	Path                string
	Languages           []string
	Frameworks          []string
	Dependencies        []string
	Patterns            []string
	TestFramework       string
	FingerprintEmbedding []float32 // nil if not yet computed
}

// Solution is a reusable problem->fix pair (§3).
type Solution struct {
	ID                string
	RepoID            string // empty means global/unscoped
	Problem           string
	ProblemEmbedding  []float32
	SolutionText      string
	Scope             Scope
	Tags              []string
	Context           map[string]interface{}
	Score             float64
	Uses              int
	Successes         int
	PartialSuccesses  int
	Failures          int
	Category          Category // empty if unset
	Complexity        int      // 0 if unset, else 1..10
	Prerequisites     []string
	AntiPatterns      []string
	CodeBlocks        []string
	RelatedSolutions  []string
	Supersedes        string // empty if none
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastUsedAt        *time.Time
	PromotedToSkill   string // skill document text, not a file path; empty if not promoted
}

// Failure is a recorded error and its fix (§3).
type Failure struct {
	ID              string
	RepoID          string
	ErrorType       ErrorType
	ErrorMessage    string
	ErrorSignature  string
	ErrorEmbedding  []float32
	Stack           string
	Files           []string
	RootCause       string
	FixApplied      string
	Prevention      string
	Occurrences     int
	CreatedAt       time.Time
	ResolvedAt      *time.Time
}

// UsageLog is an append-only audit of solution outcomes (§3).
type UsageLog struct {
	ID         int64
	SolutionID string
	RepoID     string
	Outcome    Outcome
	Notes      string
	CreatedAt  time.Time
}

// Warning is a user-declared grudge against a file or package (§3).
type Warning struct {
	ID        string
	Type      WarningType
	Target    string
	Ecosystem string // empty means unset
	Reason    string
	Severity  Severity
	RepoID    string // empty means global
}

// RepoFile is indexer bookkeeping for a single scanned file (§3).
type RepoFile struct {
	ID        int64
	RepoID    string
	FilePath  string // relative to repo root
	MTime     int64  // milliseconds
	Hash      string // optional tie-breaker
	IndexedAt time.Time
}

// Symbol is a source-code definition extracted by the indexer (§3).
type Symbol struct {
	ID       int64
	RepoID   string
	FileID   int64
	Name     string
	Kind     SymbolKind
	Line     int // 1-indexed
	Column   int // 0-indexed
	EndLine  int // 0 if unset
	Exported bool
	IsDefault bool
	Scope    string // enclosing container name, empty if top-level
	Signature string
}

// Import is a single import statement in a file (§3).
type Import struct {
	ID           int64
	FileID       int64
	ImportedName string
	LocalName    string
	SourcePath   string
	IsDefault    bool
	IsNamespace  bool
	IsType       bool
	Line         int
}

// Task is a scheduled, repeating command (§3, §4.11).
type Task struct {
	ID              string
	Name            string
	CronExpression  string
	Timezone        string
	Command         string
	WorkingDirectory string
	TimeoutSeconds  int
	Env             map[string]string
	Enabled         bool
	Worktree        bool
	Tags            []string
	RepoID          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Execution is one observed run of a Task (§3, §4.11).
type Execution struct {
	ID              string
	TaskID          string
	StartedAt       time.Time
	CompletedAt     *time.Time
	Status          ExecutionStatus
	TriggeredBy     TriggeredBy
	DurationMS      int64
	ExitCode        *int
	OutputPreview   string
	Error           string
	TaskName        string
	ProjectPath     string
	CronExpression  string
}

// ApiCache is a TTL-bounded memoized external response (§3, §6).
type ApiCache struct {
	CacheKey  string
	Response  []byte // JSON-encoded
	CreatedAt time.Time
}
