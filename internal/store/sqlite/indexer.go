package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/untoldecay/matrix/internal/merrors"
	"github.com/untoldecay/matrix/internal/types"
)

func (s *Store) ListRepoFiles(ctx context.Context, repoID string) ([]*types.RepoFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repo_id, file_path, mtime, hash, indexed_at FROM repo_files WHERE repo_id = ?`, repoID)
	if err != nil {
		return nil, fmt.Errorf("list repo files: %w", err)
	}
	defer rows.Close()

	var out []*types.RepoFile
	for rows.Next() {
		var f types.RepoFile
		var hash sql.NullString
		var indexedAt string
		if err := rows.Scan(&f.ID, &f.RepoID, &f.FilePath, &f.MTime, &hash, &indexedAt); err != nil {
			return nil, err
		}
		f.Hash = hash.String
		f.IndexedAt, _ = time.Parse(sqliteTimeLayout, indexedAt)
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (s *Store) UpsertRepoFile(ctx context.Context, f *types.RepoFile) (int64, error) {
	var hash sql.NullString
	if f.Hash != "" {
		hash = sql.NullString{String: f.Hash, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repo_files (repo_id, file_path, mtime, hash, indexed_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(repo_id, file_path) DO UPDATE SET
			mtime = excluded.mtime, hash = excluded.hash, indexed_at = CURRENT_TIMESTAMP
	`, f.RepoID, f.FilePath, f.MTime, hash)
	if err != nil {
		return 0, fmt.Errorf("upsert repo file: %w", err)
	}
	var id int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM repo_files WHERE repo_id = ? AND file_path = ?`, f.RepoID, f.FilePath).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("reload repo file id: %w", err)
	}
	f.ID = id
	return id, nil
}

func (s *Store) DeleteRepoFile(ctx context.Context, repoID, filePath string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM repo_files WHERE repo_id = ? AND file_path = ?`, repoID, filePath)
	if err != nil {
		return fmt.Errorf("delete repo file: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return merrors.NotFound("repo_file", filePath)
	}
	return nil
}

// ReplaceFileSymbolsAndImports atomically swaps out all symbols and
// imports recorded for fileID — the indexer always reparses a changed
// file wholesale rather than diffing individual definitions.
func (s *Store) ReplaceFileSymbolsAndImports(ctx context.Context, fileID int64, repoID string, symbols []*types.Symbol, imports []*types.Import) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("clear symbols: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM imports WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("clear imports: %w", err)
	}

	for _, sym := range symbols {
		var endLine sql.NullInt64
		if sym.EndLine > 0 {
			endLine = sql.NullInt64{Int64: int64(sym.EndLine), Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO symbols (repo_id, file_id, name, kind, line, column, end_line, exported, is_default, scope, signature)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, repoID, fileID, sym.Name, string(sym.Kind), sym.Line, sym.Column, endLine, boolToInt(sym.Exported), boolToInt(sym.IsDefault), sym.Scope, sym.Signature)
		if err != nil {
			return fmt.Errorf("insert symbol %s: %w", sym.Name, err)
		}
	}

	for _, imp := range imports {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO imports (file_id, imported_name, local_name, source_path, is_default, is_namespace, is_type, line)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, fileID, imp.ImportedName, imp.LocalName, imp.SourcePath, boolToInt(imp.IsDefault), boolToInt(imp.IsNamespace), boolToInt(imp.IsType), imp.Line)
		if err != nil {
			return fmt.Errorf("insert import %s: %w", imp.SourcePath, err)
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const symbolSelect = `
	SELECT symbols.id, symbols.repo_id, symbols.file_id, symbols.name, symbols.kind, symbols.line,
	       symbols.column, symbols.end_line, symbols.exported, symbols.is_default, symbols.scope, symbols.signature
	FROM symbols`

func (s *Store) FindDefinitions(ctx context.Context, repoID, name string, kind types.SymbolKind, file string) ([]*types.Symbol, error) {
	q := symbolSelect + ` JOIN repo_files ON repo_files.id = symbols.file_id WHERE symbols.repo_id = ? AND symbols.name = ?`
	args := []interface{}{repoID, name}
	if kind != "" {
		q += ` AND symbols.kind = ?`
		args = append(args, string(kind))
	}
	if file != "" {
		q += ` AND repo_files.file_path = ?`
		args = append(args, file)
	}
	return querySymbols(ctx, s.db, q, args...)
}

func (s *Store) ListExports(ctx context.Context, repoID, pathPrefix string) ([]*types.Symbol, error) {
	q := symbolSelect + ` JOIN repo_files ON repo_files.id = symbols.file_id WHERE symbols.repo_id = ? AND symbols.exported = 1`
	args := []interface{}{repoID}
	if pathPrefix != "" {
		q += ` AND repo_files.file_path LIKE ?`
		args = append(args, pathPrefix+"%")
	}
	return querySymbols(ctx, s.db, q, args...)
}

// SearchSymbols does a substring match on name, ranked per §4.10:
// exact-name matches first, then exported DESC, then shortest name.
func (s *Store) SearchSymbols(ctx context.Context, repoID, q string, limit int) ([]*types.Symbol, error) {
	if limit <= 0 {
		limit = 20
	}
	query := symbolSelect + ` WHERE symbols.repo_id = ? AND symbols.name LIKE ?
		ORDER BY (CASE WHEN symbols.name = ? THEN 0 ELSE 1 END), symbols.exported DESC, LENGTH(symbols.name) ASC
		LIMIT ?`
	return querySymbols(ctx, s.db, query, repoID, "%"+q+"%", q, limit)
}

func querySymbols(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]*types.Symbol, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var out []*types.Symbol
	for rows.Next() {
		var sym types.Symbol
		var kind string
		var endLine sql.NullInt64
		var exported, isDefault int
		var scope, signature sql.NullString
		if err := rows.Scan(&sym.ID, &sym.RepoID, &sym.FileID, &sym.Name, &kind, &sym.Line, &sym.Column,
			&endLine, &exported, &isDefault, &scope, &signature); err != nil {
			return nil, err
		}
		sym.Kind = types.SymbolKind(kind)
		sym.EndLine = int(endLine.Int64)
		sym.Exported = exported != 0
		sym.IsDefault = isDefault != 0
		sym.Scope = scope.String
		sym.Signature = signature.String
		out = append(out, &sym)
	}
	return out, rows.Err()
}

func (s *Store) GetFileImports(ctx context.Context, repoID, filePath string) ([]*types.Import, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT imports.id, imports.file_id, imports.imported_name, imports.local_name, imports.source_path,
		       imports.is_default, imports.is_namespace, imports.is_type, imports.line
		FROM imports
		JOIN repo_files ON repo_files.id = imports.file_id
		WHERE repo_files.repo_id = ? AND repo_files.file_path = ?`, repoID, filePath)
	if err != nil {
		return nil, fmt.Errorf("get file imports: %w", err)
	}
	defer rows.Close()

	var out []*types.Import
	for rows.Next() {
		var imp types.Import
		var localName sql.NullString
		var isDefault, isNamespace, isType int
		if err := rows.Scan(&imp.ID, &imp.FileID, &imp.ImportedName, &localName, &imp.SourcePath,
			&isDefault, &isNamespace, &isType, &imp.Line); err != nil {
			return nil, err
		}
		imp.LocalName = localName.String
		imp.IsDefault = isDefault != 0
		imp.IsNamespace = isNamespace != 0
		imp.IsType = isType != 0
		out = append(out, &imp)
	}
	return out, rows.Err()
}

func (s *Store) GetIndexStatus(ctx context.Context, repoID string) (files, symbols, imports int, lastIndexed string, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM repo_files WHERE repo_id = ?`, repoID).Scan(&files)
	if err != nil {
		return
	}
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM symbols WHERE repo_id = ?`, repoID).Scan(&symbols)
	if err != nil {
		return
	}
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM imports JOIN repo_files ON repo_files.id = imports.file_id WHERE repo_files.repo_id = ?`, repoID).Scan(&imports)
	if err != nil {
		return
	}
	var last sql.NullString
	err = s.db.QueryRowContext(ctx, `SELECT MAX(indexed_at) FROM repo_files WHERE repo_id = ?`, repoID).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	lastIndexed = last.String
	return
}

// FindUncalledExports returns exported symbols with no matching import
// name anywhere in the repo — a heuristic dead-export scan, not a full
// call graph (spec.md Non-goals excludes flow analysis).
func (s *Store) FindUncalledExports(ctx context.Context, repoID string) ([]*types.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, symbolSelect+`
		WHERE symbols.repo_id = ? AND symbols.exported = 1
		AND symbols.name NOT IN (
			SELECT imports.imported_name FROM imports
			JOIN repo_files ON repo_files.id = imports.file_id
			WHERE repo_files.repo_id = ?
		)`, repoID, repoID)
	if err != nil {
		return nil, fmt.Errorf("find uncalled exports: %w", err)
	}
	defer rows.Close()

	var out []*types.Symbol
	for rows.Next() {
		var sym types.Symbol
		var kind string
		var endLine sql.NullInt64
		var exported, isDefault int
		var scope, signature sql.NullString
		if err := rows.Scan(&sym.ID, &sym.RepoID, &sym.FileID, &sym.Name, &kind, &sym.Line, &sym.Column,
			&endLine, &exported, &isDefault, &scope, &signature); err != nil {
			return nil, err
		}
		sym.Kind = types.SymbolKind(kind)
		sym.EndLine = int(endLine.Int64)
		sym.Exported = exported != 0
		sym.IsDefault = isDefault != 0
		sym.Scope = scope.String
		sym.Signature = signature.String
		out = append(out, &sym)
	}
	return out, rows.Err()
}
