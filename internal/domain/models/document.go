package models

import (
	"time"
)

// DocumentType distinguishes tree nodes: folders may have children,
// files never do.
type DocumentType string

const (
	TypeFolder DocumentType = "folder"
	TypeFile   DocumentType = "file"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t == TypeFolder || t == TypeFile
}

// Document is a node in a project's folder/file tree. The tree is
// stored flat: ParentID is the parent pointer, Path is the materialized
// dot-separated chain of sanitized name segments anchored at "root".
// Path must be rewritten for the whole subtree whenever a document is
// renamed or moved.
type Document struct {
	ID        string       `json:"id" db:"id"`
	ProjectID string       `json:"project_id" db:"project_id"`
	ParentID  *string      `json:"parent_id" db:"parent_id"` // NULL = root level
	Name      string       `json:"name" db:"name"`
	Type      DocumentType `json:"type" db:"type"`
	Path      string       `json:"path" db:"path"`
	FileURL   *string      `json:"file_url,omitempty" db:"file_url"` // set once the binary is stored
	FileKey   *string      `json:"-" db:"file_key"`                  // blob key frozen at upload time; renames never move the blob
	URN       *string      `json:"urn,omitempty" db:"urn"`           // set once CAD conversion succeeded
	CreatedBy string       `json:"created_by" db:"created_by"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`

	// Children is populated only by tree construction, never stored.
	Children []*Document `json:"children,omitempty"`
}

// IsFolder reports whether the document can hold children.
func (d *Document) IsFolder() bool { return d.Type == TypeFolder }
