package sqlite

// schema is the full, latest-version schema. §8 invariant 1 requires that
// a fresh database built from this string and a database built by running
// migrationsList in order end up structurally identical — see
// migrate_test.go.
const schema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS repos (
    id                    TEXT PRIMARY KEY,
    name                  TEXT NOT NULL,
    path                  TEXT NOT NULL UNIQUE,
    languages             TEXT NOT NULL DEFAULT '[]',
    frameworks            TEXT NOT NULL DEFAULT '[]',
    dependencies          TEXT NOT NULL DEFAULT '[]',
    patterns              TEXT NOT NULL DEFAULT '[]',
    test_framework        TEXT NOT NULL DEFAULT '',
    fingerprint_embedding BLOB,
    created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS solutions (
    id                 TEXT PRIMARY KEY,
    repo_id            TEXT REFERENCES repos(id) ON DELETE SET NULL,
    problem            TEXT NOT NULL,
    problem_embedding  BLOB NOT NULL,
    solution           TEXT NOT NULL,
    scope              TEXT NOT NULL DEFAULT 'global' CHECK(scope IN ('global','stack','repo')),
    tags               TEXT NOT NULL DEFAULT '[]',
    context            TEXT NOT NULL DEFAULT '{}',
    score              REAL NOT NULL DEFAULT 0.5 CHECK(score >= 0.1 AND score <= 1.0),
    uses               INTEGER NOT NULL DEFAULT 0,
    successes          INTEGER NOT NULL DEFAULT 0,
    partial_successes  INTEGER NOT NULL DEFAULT 0,
    failures           INTEGER NOT NULL DEFAULT 0,
    category           TEXT NOT NULL DEFAULT '',
    complexity         INTEGER,
    prerequisites      TEXT NOT NULL DEFAULT '[]',
    anti_patterns      TEXT NOT NULL DEFAULT '[]',
    code_blocks        TEXT NOT NULL DEFAULT '[]',
    related_solutions  TEXT NOT NULL DEFAULT '[]',
    supersedes         TEXT REFERENCES solutions(id) ON DELETE SET NULL,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_used_at       DATETIME,
    promoted_to_skill  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_solutions_repo ON solutions(repo_id);
CREATE INDEX IF NOT EXISTS idx_solutions_scope ON solutions(scope);
CREATE INDEX IF NOT EXISTS idx_solutions_score ON solutions(score);

CREATE TABLE IF NOT EXISTS failures (
    id               TEXT PRIMARY KEY,
    repo_id          TEXT REFERENCES repos(id) ON DELETE SET NULL,
    error_type       TEXT NOT NULL CHECK(error_type IN ('runtime','build','test','type','other')),
    error_message    TEXT NOT NULL,
    error_signature  TEXT NOT NULL,
    error_embedding  BLOB NOT NULL,
    stack            TEXT NOT NULL DEFAULT '',
    files             TEXT NOT NULL DEFAULT '[]',
    root_cause       TEXT NOT NULL DEFAULT '',
    fix_applied      TEXT NOT NULL DEFAULT '',
    prevention       TEXT NOT NULL DEFAULT '',
    occurrences      INTEGER NOT NULL DEFAULT 1 CHECK(occurrences >= 1),
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    resolved_at      DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_failures_signature ON failures(error_signature);

CREATE TABLE IF NOT EXISTS usage_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    solution_id TEXT NOT NULL REFERENCES solutions(id) ON DELETE CASCADE,
    repo_id     TEXT REFERENCES repos(id) ON DELETE SET NULL,
    outcome     TEXT NOT NULL CHECK(outcome IN ('success','partial','failure','skipped')),
    notes       TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_usage_log_solution ON usage_log(solution_id);

CREATE TABLE IF NOT EXISTS warnings (
    id        TEXT PRIMARY KEY,
    type      TEXT NOT NULL CHECK(type IN ('file','package')),
    target    TEXT NOT NULL,
    ecosystem TEXT,
    reason    TEXT NOT NULL DEFAULT '',
    severity  TEXT NOT NULL DEFAULT 'warn' CHECK(severity IN ('info','warn','block')),
    repo_id   TEXT REFERENCES repos(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_warnings_unique
    ON warnings(type, target, IFNULL(ecosystem, ''), IFNULL(repo_id, ''));

CREATE TABLE IF NOT EXISTS repo_files (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    repo_id    TEXT NOT NULL REFERENCES repos(id) ON DELETE CASCADE,
    file_path  TEXT NOT NULL,
    mtime      INTEGER NOT NULL,
    hash       TEXT,
    indexed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_repo_files_unique ON repo_files(repo_id, file_path);

CREATE TABLE IF NOT EXISTS symbols (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    repo_id    TEXT NOT NULL REFERENCES repos(id) ON DELETE CASCADE,
    file_id    INTEGER NOT NULL REFERENCES repo_files(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    kind       TEXT NOT NULL,
    line       INTEGER NOT NULL,
    column     INTEGER NOT NULL,
    end_line   INTEGER,
    exported   INTEGER NOT NULL DEFAULT 0,
    is_default INTEGER NOT NULL DEFAULT 0,
    scope      TEXT,
    signature  TEXT
);

CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_repo_name ON symbols(repo_id, name);
CREATE INDEX IF NOT EXISTS idx_symbols_repo_exported ON symbols(repo_id, exported);

CREATE TABLE IF NOT EXISTS imports (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id       INTEGER NOT NULL REFERENCES repo_files(id) ON DELETE CASCADE,
    imported_name TEXT NOT NULL,
    local_name    TEXT,
    source_path   TEXT NOT NULL,
    is_default    INTEGER NOT NULL DEFAULT 0,
    is_namespace  INTEGER NOT NULL DEFAULT 0,
    is_type       INTEGER NOT NULL DEFAULT 0,
    line          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_imports_file ON imports(file_id);
CREATE INDEX IF NOT EXISTS idx_imports_source ON imports(source_path);

CREATE TABLE IF NOT EXISTS tasks (
    id                TEXT PRIMARY KEY,
    name              TEXT NOT NULL,
    cron_expression   TEXT NOT NULL,
    timezone          TEXT NOT NULL DEFAULT 'local',
    command           TEXT NOT NULL,
    working_directory TEXT NOT NULL,
    timeout           INTEGER NOT NULL DEFAULT 300,
    env               TEXT NOT NULL DEFAULT '{}',
    enabled           INTEGER NOT NULL DEFAULT 1,
    worktree          INTEGER NOT NULL DEFAULT 0,
    tags              TEXT NOT NULL DEFAULT '[]',
    repo_id           TEXT REFERENCES repos(id) ON DELETE SET NULL,
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS executions (
    id              TEXT PRIMARY KEY,
    task_id         TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    started_at      DATETIME NOT NULL,
    completed_at    DATETIME,
    status          TEXT NOT NULL CHECK(status IN ('running','success','failure','timeout','skipped')),
    triggered_by    TEXT NOT NULL CHECK(triggered_by IN ('schedule','manual')),
    duration_ms     INTEGER,
    exit_code       INTEGER,
    output_preview  TEXT NOT NULL DEFAULT '',
    error           TEXT NOT NULL DEFAULT '',
    task_name       TEXT NOT NULL DEFAULT '',
    project_path    TEXT NOT NULL DEFAULT '',
    cron_expression TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_executions_task ON executions(task_id);
CREATE INDEX IF NOT EXISTS idx_executions_started ON executions(started_at);

CREATE TABLE IF NOT EXISTS api_cache (
    cache_key  TEXT PRIMARY KEY,
    response   TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
