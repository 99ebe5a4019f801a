package config

const (
	// MaxProjectTitleLength is the maximum length for project titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxProjectTitleLength = 255

	// MaxDocumentNameLength is the maximum length for document names.
	// Same cap for folders and files.
	MaxDocumentNameLength = 255

	// MaxDocumentPathLength is the maximum length for materialized
	// paths. Longer paths indicate overly deep hierarchies.
	MaxDocumentPathLength = 1000

	// MaxUploadSize caps a single file upload (multipart form memory is
	// a fraction of this).
	MaxUploadSize = 100 << 20 // 100 MB
)
