package git

import (
	"context"
	"fmt"

	"a11y-hq/lumen/pkg/rulepack"
)

// Source loads rule packs from a Git repository, cloning it on first use.
type Source struct {
	repo   *Repository
	loader *rulepack.Loader
}

// NewSource creates a Git-backed pack source.
func NewSource(repo *Repository, loader *rulepack.Loader) *Source {
	if loader == nil {
		loader = rulepack.NewLoader(nil)
	}
	return &Source{repo: repo, loader: loader}
}

// Name identifies the repository and branch.
func (s *Source) Name() string {
	return fmt.Sprintf("git:%s@%s", s.repo.config.Repository, s.repo.config.Branch)
}

// Repository returns the underlying repository.
func (s *Source) Repository() *Repository {
	return s.repo
}

// Load reads the packs at the current checkout.
func (s *Source) Load(ctx context.Context) ([]*rulepack.Pack, error) {
	s.repo.mu.RLock()
	cloned := s.repo.repo != nil
	s.repo.mu.RUnlock()

	if !cloned {
		if err := s.repo.Clone(ctx); err != nil {
			return nil, err
		}
	}
	return s.loader.LoadDirectory(s.repo.PackPath())
}
