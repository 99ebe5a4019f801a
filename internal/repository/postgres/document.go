package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"sitedocs/internal/domain"
	"sitedocs/internal/domain/models"
	"sitedocs/internal/domain/repositories"
)

const documentColumns = "id, project_id, parent_id, name, type, path, file_url, file_key, urn, created_by, created_at, updated_at"

// escapeLikePrefix escapes LIKE metacharacters so a materialized path
// matches literally. Sanitized path segments are full of underscores,
// and an unescaped '_' in a LIKE pattern matches any single character,
// which would pull unrelated sibling subtrees into prefix queries.
func escapeLikePrefix(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, `_`, `\_`)
	path = strings.ReplaceAll(path, `%`, `\%`)
	return path
}

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanDocument(row interface{ Scan(dest ...any) error }, doc *models.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.ProjectID,
		&doc.ParentID,
		&doc.Name,
		&doc.Type,
		&doc.Path,
		&doc.FileURL,
		&doc.FileKey,
		&doc.URN,
		&doc.CreatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
}

// Create inserts a document row
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, parent_id, name, type, path, file_url, file_key, urn, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ProjectID,
		doc.ParentID,
		doc.Name,
		doc.Type,
		doc.Path,
		doc.FileURL,
		doc.FileKey,
		doc.URN,
		doc.CreatedBy,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("parent of document '%s': %w", doc.Name, domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a single document
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, documentColumns, r.tables.Documents)

	var doc models.Document
	executor := GetExecutor(ctx, r.pool)
	if err := scanDocument(executor.QueryRow(ctx, query, id), &doc); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// ListByProject retrieves all documents of a project ordered by path.
// Path order yields every parent before its children, which the tree
// builder relies on for stable child ordering.
func (r *PostgresDocumentRepository) ListByProject(ctx context.Context, projectID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1
		ORDER BY path ASC
	`, documentColumns, r.tables.Documents)

	return r.queryDocuments(ctx, query, projectID)
}

// ListSiblingNames returns names of same-type documents under parentID
func (r *PostgresDocumentRepository) ListSiblingNames(ctx context.Context, projectID string, parentID *string, docType models.DocumentType) ([]string, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT name FROM %s
			WHERE project_id = $1 AND parent_id IS NULL AND type = $2
		`, r.tables.Documents)
		args = []interface{}{projectID, docType}
	} else {
		query = fmt.Sprintf(`
			SELECT name FROM %s
			WHERE project_id = $1 AND parent_id = $2 AND type = $3
		`, r.tables.Documents)
		args = []interface{}{projectID, *parentID, docType}
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sibling names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan sibling name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sibling names: %w", err)
	}

	return names, nil
}

// GetSibling retrieves the same-type document named name directly under
// parentID. IS NOT DISTINCT FROM folds the root level (NULL parent)
// into one predicate.
func (r *PostgresDocumentRepository) GetSibling(ctx context.Context, projectID string, parentID *string, name string, docType models.DocumentType) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND name = $3 AND type = $4
	`, documentColumns, r.tables.Documents)

	var doc models.Document
	executor := GetExecutor(ctx, r.pool)
	if err := scanDocument(executor.QueryRow(ctx, query, projectID, parentID, name, docType), &doc); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get sibling: %w", err)
	}

	return &doc, nil
}

// Update persists a document's mutable fields
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, path = $3, file_url = $4, file_key = $5, urn = $6, updated_at = $7
		WHERE id = $8
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		doc.ParentID,
		doc.Name,
		doc.Path,
		doc.FileURL,
		doc.FileKey,
		doc.URN,
		doc.UpdatedAt,
		doc.ID,
	)

	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// RewriteSubtreePaths swaps the path prefix for every strict descendant
// of a renamed or moved document in a single statement.
func (r *PostgresDocumentRepository) RewriteSubtreePaths(ctx context.Context, projectID, oldPath, newPath string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET path = $1 || substr(path, length($2) + 1), updated_at = NOW()
		WHERE project_id = $3 AND path LIKE $4 || '.%%' ESCAPE '\'
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, newPath, oldPath, projectID, escapeLikePrefix(oldPath)); err != nil {
		return fmt.Errorf("rewrite subtree paths: %w", err)
	}

	return nil
}

// ListSubtree returns every strict descendant of pathPrefix
func (r *PostgresDocumentRepository) ListSubtree(ctx context.Context, projectID, pathPrefix string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1 AND path LIKE $2 || '.%%' ESCAPE '\'
		ORDER BY path DESC
	`, documentColumns, r.tables.Documents)

	return r.queryDocuments(ctx, query, projectID, escapeLikePrefix(pathPrefix))
}

// DeleteSubtree removes every strict descendant of pathPrefix
func (r *PostgresDocumentRepository) DeleteSubtree(ctx context.Context, projectID, pathPrefix string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE project_id = $1 AND path LIKE $2 || '.%%' ESCAPE '\'
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID, escapeLikePrefix(pathPrefix)); err != nil {
		return fmt.Errorf("delete subtree: %w", err)
	}

	return nil
}

// Delete removes a single document row
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListFilesByProject returns all file documents of a project
func (r *PostgresDocumentRepository) ListFilesByProject(ctx context.Context, projectID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1 AND type = 'file'
	`, documentColumns, r.tables.Documents)

	return r.queryDocuments(ctx, query, projectID)
}

// DeleteByProject removes every document row of a project
func (r *PostgresDocumentRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE project_id = $1
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return fmt.Errorf("delete project documents: %w", err)
	}

	return nil
}

func (r *PostgresDocumentRepository) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]models.Document, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}
