package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/untoldecay/matrix/internal/merrors"
	"github.com/untoldecay/matrix/internal/types"
)

func (s *Store) UpsertRepo(ctx context.Context, repo *types.Repo) error {
	if repo.ID == "" {
		repo.ID = "repo_" + uuid.NewString()[:8]
	}

	languages, err := json.Marshal(nonNil(repo.Languages))
	if err != nil {
		return err
	}
	frameworks, err := json.Marshal(nonNil(repo.Frameworks))
	if err != nil {
		return err
	}
	dependencies, err := json.Marshal(nonNil(repo.Dependencies))
	if err != nil {
		return err
	}
	patterns, err := json.Marshal(nonNil(repo.Patterns))
	if err != nil {
		return err
	}

	var embedding []byte
	if repo.FingerprintEmbedding != nil {
		embedding = encodeVector(repo.FingerprintEmbedding)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO repos (id, name, path, languages, frameworks, dependencies, patterns, test_framework, fingerprint_embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			languages = excluded.languages,
			frameworks = excluded.frameworks,
			dependencies = excluded.dependencies,
			patterns = excluded.patterns,
			test_framework = excluded.test_framework,
			fingerprint_embedding = excluded.fingerprint_embedding,
			updated_at = CURRENT_TIMESTAMP
	`, repo.ID, repo.Name, repo.Path, string(languages), string(frameworks), string(dependencies), string(patterns), repo.TestFramework, embedding)
	if err != nil {
		return fmt.Errorf("upsert repo: %w", err)
	}

	// ON CONFLICT may have kept an existing id different from the one we
	// generated; reload so the caller's repo.ID reflects the stored row.
	existing, err := s.GetRepoByPath(ctx, repo.Path)
	if err != nil {
		return err
	}
	*repo = *existing
	return nil
}

func (s *Store) GetRepoByPath(ctx context.Context, path string) (*types.Repo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, path, languages, frameworks, dependencies, patterns, test_framework, fingerprint_embedding
		FROM repos WHERE path = ?`, path)
	return scanRepo(row)
}

func (s *Store) GetRepo(ctx context.Context, id string) (*types.Repo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, path, languages, frameworks, dependencies, patterns, test_framework, fingerprint_embedding
		FROM repos WHERE id = ?`, id)
	return scanRepo(row)
}

func scanRepo(row *sql.Row) (*types.Repo, error) {
	r, err := scanRepoInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, merrors.NotFound("repo", "")
	}
	return r, err
}

func scanRepoInto(r rowScanner) (*types.Repo, error) {
	var repo types.Repo
	var languages, frameworks, dependencies, patterns string
	var embedding []byte
	err := r.Scan(&repo.ID, &repo.Name, &repo.Path, &languages, &frameworks, &dependencies, &patterns, &repo.TestFramework, &embedding)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(languages), &repo.Languages); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(frameworks), &repo.Frameworks); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(dependencies), &repo.Dependencies); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(patterns), &repo.Patterns); err != nil {
		return nil, err
	}
	if v, ok := decodeVector(embedding); ok {
		repo.FingerprintEmbedding = v
	}
	return &repo, nil
}

// ListRepos returns every indexed repo, ordered by name, for export
// (spec.md §6 "Export formats").
func (s *Store) ListRepos(ctx context.Context) ([]*types.Repo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, path, languages, frameworks, dependencies, patterns, test_framework, fingerprint_embedding
		FROM repos ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list repos: %w", err)
	}
	defer rows.Close()

	var out []*types.Repo
	for rows.Next() {
		r, err := scanRepoInto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repo: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
