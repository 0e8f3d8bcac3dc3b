package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/untoldecay/matrix/internal/embedding"
	"github.com/untoldecay/matrix/internal/merrors"
	"github.com/untoldecay/matrix/internal/types"
)

// RecordFailureInput is the payload accepted by RecordFailure (§4.7).
type RecordFailureInput struct {
	RepoID       string
	ErrorType    types.ErrorType
	ErrorMessage string
	Stack        string
	Files        []string
	RootCause    string
	FixApplied   string
	Prevention   string
}

var (
	numberPattern  = regexp.MustCompile(`\d+`)
	quotedPattern  = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	hexAddrPattern = regexp.MustCompile(`0x[0-9a-fA-F]+`)
	pathPattern    = regexp.MustCompile(`(?:/[\w.\-]+)+|(?:[A-Za-z]:\\[\w.\-\\]+)`)
	spacesPattern  = regexp.MustCompile(`\s+`)
)

// normalizeMessage implements §4.7 step 1. The substitution order is
// deliberate and matches the original behavior this spec was distilled
// from: numbers are replaced before hex addresses, so the leading 0 of
// a hex address like 0xdeadbeef is turned into N first, leaving
// "Nxdeadbeef" rather than a HEX token; the hex rule never matches
// after that. This quirk is preserved rather than "fixed" since downstream
// signature grouping only needs normalization to be consistent, not
// pretty.
func normalizeMessage(msg string) string {
	out := numberPattern.ReplaceAllString(msg, "N")
	out = quotedPattern.ReplaceAllString(out, "STR")
	out = pathPattern.ReplaceAllString(out, "PATH")
	out = hexAddrPattern.ReplaceAllString(out, "HEX")
	out = spacesPattern.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)
	if len(out) > 500 {
		out = out[:500]
	}
	return out
}

func errorSignature(errorType types.ErrorType, normalized string) string {
	sum := sha256.Sum256([]byte(string(errorType) + ":" + normalized))
	return hex.EncodeToString(sum[:])[:16]
}

// RecordFailure implements §4.7: normalize, sign, and either collapse
// into an existing row or insert a fresh one with a freshly computed
// error_embedding.
func (e *Engine) RecordFailure(ctx context.Context, in RecordFailureInput) (*types.Failure, error) {
	normalized := normalizeMessage(in.ErrorMessage)
	sig := errorSignature(in.ErrorType, normalized)

	existing, err := e.db.GetFailureBySignature(ctx, sig)
	if err == nil {
		existing.Occurrences++
		if in.RootCause != "" {
			existing.RootCause = in.RootCause
		}
		if in.FixApplied != "" {
			existing.FixApplied = in.FixApplied
		}
		if in.Prevention != "" {
			existing.Prevention = in.Prevention
		}
		now := time.Now()
		existing.ResolvedAt = &now
		if err := e.db.UpdateFailure(ctx, existing); err != nil {
			return nil, fmt.Errorf("memory: record failure: update: %w", err)
		}
		return existing, nil
	}
	if !merrors.Is(err, merrors.KindNotFound) {
		return nil, fmt.Errorf("memory: record failure: lookup: %w", err)
	}

	f := &types.Failure{
		RepoID:         in.RepoID,
		ErrorType:      in.ErrorType,
		ErrorMessage:   in.ErrorMessage,
		ErrorSignature: sig,
		ErrorEmbedding: embedding.Embed(fmt.Sprintf("%s: %s %s", in.ErrorType, in.ErrorMessage, in.RootCause)),
		Stack:          in.Stack,
		Files:          in.Files,
		RootCause:      in.RootCause,
		FixApplied:     in.FixApplied,
		Prevention:     in.Prevention,
		Occurrences:    1,
	}
	if err := e.db.InsertFailure(ctx, f); err != nil {
		return nil, fmt.Errorf("memory: record failure: insert: %w", err)
	}
	return f, nil
}

// FailureMatch is one result of SearchFailures.
type FailureMatch struct {
	Failure   *types.Failure
	Similarity float64
}

const failureSearchMinScore = 0.5

// SearchFailures implements §4.7's search_failures: embed the query,
// scan rows with a valid embedding and a recorded fix, keep cosine >=
// 0.5, sorted descending, capped at limit (default 3).
func (e *Engine) SearchFailures(ctx context.Context, errorMessage string, limit int) ([]FailureMatch, error) {
	if limit <= 0 {
		limit = 3
	}
	queryEmbedding := embedding.Embed(errorMessage)

	failures, err := e.db.ScanFailures(ctx)
	if err != nil {
		return nil, fmt.Errorf("memory: search failures: %w", err)
	}

	var matches []FailureMatch
	for _, f := range failures {
		if f.FixApplied == "" || len(f.ErrorEmbedding) != embedding.Dimension {
			continue
		}
		sim, err := embedding.Cosine(queryEmbedding, f.ErrorEmbedding)
		if err != nil || sim < failureSearchMinScore {
			continue
		}
		matches = append(matches, FailureMatch{Failure: f, Similarity: sim})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
