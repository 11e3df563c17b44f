package services

import (
	"context"

	"tripcal/internal/core"
	"tripcal/internal/document"
)

// DocumentSource supplies the current trip document.
type DocumentSource interface {
	Load(ctx context.Context) (*core.Document, error)
}

// FileSource reads the document from disk on every call so edits to the
// file are picked up without a restart; the projection cache keys on the
// content hash.
type FileSource struct {
	Path string
}

func (f FileSource) Load(_ context.Context) (*core.Document, error) {
	return document.Load(f.Path)
}

// StaticSource serves a document held in memory.
type StaticSource struct {
	Doc *core.Document
}

func (s StaticSource) Load(_ context.Context) (*core.Document, error) {
	if err := s.Doc.Validate(); err != nil {
		return nil, err
	}
	return s.Doc, nil
}
