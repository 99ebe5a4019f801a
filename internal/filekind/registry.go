// Package filekind classifies uploaded files by extension and decides
// which viewer can display them.
package filekind

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	_ "embed"

	"gopkg.in/yaml.v3"
)

// Kind is a viewer category for an uploaded file.
type Kind string

const (
	KindImage       Kind = "image"
	KindPDF         Kind = "pdf"
	KindOffice      Kind = "office"
	KindModel       Kind = "model"
	KindUnsupported Kind = "unsupported"
)

//go:embed kinds.yaml
var kindsYAML []byte

type registryFile struct {
	Kinds []struct {
		Kind       Kind     `yaml:"kind"`
		Viewer     string   `yaml:"viewer"`
		Extensions []string `yaml:"extensions"`
	} `yaml:"kinds"`
}

// Registry resolves file names to kinds and viewer URLs.
type Registry struct {
	byExt map[string]Kind
}

// NewRegistry parses the embedded kind table.
func NewRegistry() (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(kindsYAML, &file); err != nil {
		return nil, fmt.Errorf("parse kind registry: %w", err)
	}

	byExt := make(map[string]Kind)
	for _, entry := range file.Kinds {
		for _, ext := range entry.Extensions {
			byExt[strings.ToLower(ext)] = entry.Kind
		}
	}

	return &Registry{byExt: byExt}, nil
}

// KindOf classifies a file name by its extension.
func (r *Registry) KindOf(name string) Kind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return KindUnsupported
	}
	if kind, ok := r.byExt[ext]; ok {
		return kind
	}
	return KindUnsupported
}

// ViewerURL returns the URL a browser can open to display the file at
// fileURL, or "" when the kind needs the Forge viewer or has none.
func (r *Registry) ViewerURL(name, fileURL string) string {
	switch r.KindOf(name) {
	case KindImage:
		return fileURL
	case KindPDF:
		return "https://docs.google.com/viewer?url=" + url.QueryEscape(fileURL) + "&embedded=true"
	case KindOffice:
		return "https://view.officeapps.live.com/op/embed.aspx?src=" + url.QueryEscape(fileURL)
	default:
		return ""
	}
}
