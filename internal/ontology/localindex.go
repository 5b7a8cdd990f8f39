// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bioepic-data/trowel/pkg/types"
)

// Predicates used by the semantic-SQL OBO build this backend reads.
const (
	predLabel      = "rdfs:label"
	predDefinition = "IAO:0000115"
)

var synonymPredicates = []string{
	"oboInOwl:hasExactSynonym",
	"oboInOwl:hasRelatedSynonym",
	"oboInOwl:hasBroadSynonym",
	"oboInOwl:hasNarrowSynonym",
}

// localIndex implements Searcher and Describer over a local SQLite
// build of an OBO ontology (the statements/edges schema produced by
// semantic-sql exports).
type localIndex struct {
	db       *sql.DB
	ontology string
}

// openLocalIndex opens the database file for a local-index catalog
// entry. The file must already exist; opening a missing path would
// otherwise silently create an empty database.
func openLocalIndex(indexFile, id string, opts ClientOptions) (*localIndex, error) {
	path := filepath.Join(opts.IndexDir, indexFile)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("local index for %s: %w", id, err)
	}

	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening local index %s: %w", path, err)
	}
	return &localIndex{db: db, ontology: id}, nil
}

// Close releases the database handle.
func (l *localIndex) Close() error {
	return l.db.Close()
}

// Search scans term labels for a case-insensitive substring match. An
// empty query returns the ontology's full term list (bounded by limit),
// which collaborators use to dump reference vocabularies.
func (l *localIndex) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	q := `SELECT subject, value FROM statements WHERE predicate = ?`
	args := []any{predLabel}
	if query != "" {
		q += ` AND value LIKE ?`
		args = append(args, "%"+query+"%")
	}
	q += ` ORDER BY subject LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, &BackendError{Backend: "local-index", Err: fmt.Errorf("querying labels: %w", err)}
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var subject, label string
		if err := rows.Scan(&subject, &label); err != nil {
			return nil, &BackendError{Backend: "local-index", Err: fmt.Errorf("scanning row: %w", err)}
		}
		id := CompressURI(subject)
		candidates = append(candidates, Candidate{
			TermID:   id,
			Ontology: curiePrefix(id, l.ontology),
			Label:    label,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &BackendError{Backend: "local-index", Err: err}
	}
	return candidates, nil
}

// Describe assembles the label, definition, synonyms, and outgoing
// relationships for a term from the statements and edges tables.
func (l *localIndex) Describe(ctx context.Context, termID string) (types.TermDetails, error) {
	details := types.TermDetails{
		TermID:     termID,
		OntologyID: curiePrefix(termID, l.ontology),
	}

	label, err := l.annotation(ctx, termID, predLabel)
	if err != nil {
		return types.TermDetails{}, err
	}
	if label == "" {
		return types.TermDetails{}, fmt.Errorf("term %s not found in %s", termID, l.ontology)
	}
	details.Label = label

	if details.Definition, err = l.annotation(ctx, termID, predDefinition); err != nil {
		return types.TermDetails{}, err
	}

	placeholders := strings.Repeat("?,", len(synonymPredicates))
	placeholders = placeholders[:len(placeholders)-1]
	args := []any{termID}
	for _, p := range synonymPredicates {
		args = append(args, p)
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT value FROM statements WHERE subject = ? AND predicate IN (`+placeholders+`) ORDER BY value`,
		args...)
	if err != nil {
		return types.TermDetails{}, &BackendError{Backend: "local-index", Err: fmt.Errorf("querying synonyms: %w", err)}
	}
	defer rows.Close()
	for rows.Next() {
		var syn string
		if err := rows.Scan(&syn); err != nil {
			return types.TermDetails{}, &BackendError{Backend: "local-index", Err: err}
		}
		details.Synonyms = append(details.Synonyms, syn)
	}
	if err := rows.Err(); err != nil {
		return types.TermDetails{}, &BackendError{Backend: "local-index", Err: err}
	}

	rels, err := l.relationships(ctx, termID)
	if err != nil {
		return types.TermDetails{}, err
	}
	details.Relationships = rels

	return details, nil
}

func (l *localIndex) annotation(ctx context.Context, subject, predicate string) (string, error) {
	var value string
	err := l.db.QueryRowContext(ctx,
		`SELECT value FROM statements WHERE subject = ? AND predicate = ? LIMIT 1`,
		subject, predicate,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", &BackendError{Backend: "local-index", Err: fmt.Errorf("querying %s: %w", predicate, err)}
	}
	return value, nil
}

func (l *localIndex) relationships(ctx context.Context, subject string) (map[string][]types.RelatedTerm, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT e.predicate, e.object, COALESCE(s.value, '')
		 FROM edges e
		 LEFT JOIN statements s ON s.subject = e.object AND s.predicate = ?
		 WHERE e.subject = ?
		 ORDER BY e.predicate, e.object`,
		predLabel, subject)
	if err != nil {
		return nil, &BackendError{Backend: "local-index", Err: fmt.Errorf("querying edges: %w", err)}
	}
	defer rows.Close()

	rels := make(map[string][]types.RelatedTerm)
	for rows.Next() {
		var predicate, object, label string
		if err := rows.Scan(&predicate, &object, &label); err != nil {
			return nil, &BackendError{Backend: "local-index", Err: err}
		}
		rels[predicate] = append(rels[predicate], types.RelatedTerm{
			ID:    CompressURI(object),
			Label: label,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &BackendError{Backend: "local-index", Err: err}
	}
	if len(rels) == 0 {
		return nil, nil
	}
	return rels, nil
}
