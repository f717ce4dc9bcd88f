package rulepack

import (
	"context"
	"strings"
)

// Source produces rule packs.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Load returns the current packs. Partial failures are reported with an
	// ErrorList alongside the packs that loaded.
	Load(ctx context.Context) ([]*Pack, error)
}

// FileSource loads packs from local files and directories.
type FileSource struct {
	Paths  []string
	Loader *Loader
}

// NewFileSource creates a source reading paths with loader.
func NewFileSource(paths []string, loader *Loader) *FileSource {
	if loader == nil {
		loader = NewLoader(nil)
	}
	return &FileSource{Paths: paths, Loader: loader}
}

// Name returns "file:" followed by the configured paths.
func (s *FileSource) Name() string {
	return "file:" + strings.Join(s.Paths, ",")
}

// Load reads every configured path.
func (s *FileSource) Load(ctx context.Context) ([]*Pack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Loader.LoadPaths(s.Paths)
}

// LoadAll loads every source in order and concatenates the packs.
func LoadAll(ctx context.Context, sources ...Source) ([]*Pack, error) {
	var packs []*Pack
	errList := &ErrorList{}
	for _, src := range sources {
		loaded, err := src.Load(ctx)
		packs = append(packs, loaded...)
		errList.Add(err)
	}
	return packs, errList.ToError()
}
