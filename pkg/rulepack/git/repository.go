package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"a11y-hq/lumen/pkg/config"
)

// ErrNotCloned is returned by operations that need a local clone.
var ErrNotCloned = errors.New("repository not initialized, call Clone first")

// PackExtensions are the file extensions treated as rule packs.
var PackExtensions = []string{".yaml", ".yml"}

// Repository manages the local clone of a rule pack repository.
type Repository struct {
	config    *config.GitRulesConfig
	localPath string
	auth      AuthProvider
	repo      *gogit.Repository
	mu        sync.RWMutex
	stats     RepositoryStats
}

// NewRepository creates a repository manager. Nothing is cloned until Clone.
func NewRepository(cfg *config.GitRulesConfig) (*Repository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Repository == "" {
		return nil, errors.New("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, errors.New("branch cannot be empty")
	}

	auth, err := NewAuthProvider(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	localPath := cfg.Clone.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "lumen-rules")
	}

	return &Repository{
		config:    cfg,
		localPath: localPath,
		auth:      auth,
	}, nil
}

// Clone opens an existing clone at the local path, or clones the remote
// there. With CleanOnStart the local path is removed first.
func (r *Repository) Clone(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	defer func() { r.stats.CloneDuration = time.Since(start) }()

	if r.config.Clone.CleanOnStart {
		if err := os.RemoveAll(r.localPath); err != nil {
			return fmt.Errorf("failed to clean existing repository: %w", err)
		}
	}

	if _, err := os.Stat(filepath.Join(r.localPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(r.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo: %w", err)
		}
		r.repo = repo
		return nil
	}

	if err := os.MkdirAll(r.localPath, 0o755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}

	auth, err := r.auth.Method()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}

	cloneCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, r.localPath, false, &gogit.CloneOptions{
		URL:           r.config.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(r.config.Branch),
		SingleBranch:  r.config.Clone.Depth > 0,
		Depth:         r.config.Clone.Depth,
		Auth:          auth,
	})
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	r.repo = repo
	return nil
}

// Pull fetches and merges the tracked branch. The result lists the files
// that changed between the old and new HEAD.
func (r *Repository) Pull(ctx context.Context) (*PullResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	defer func() {
		r.stats.PullDuration = time.Since(start)
		r.stats.LastPullTime = time.Now()
	}()

	if r.repo == nil {
		return nil, ErrNotCloned
	}

	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	fromSHA := ref.Hash().String()

	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	auth, err := r.auth.Method()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth: %w", err)
	}

	pullCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err = worktree.PullContext(pullCtx, &gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(r.config.Branch),
		Auth:          auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		r.stats.FailedPulls++
		return nil, fmt.Errorf("failed to pull: %w", err)
	}
	r.stats.SuccessfulPulls++

	newRef, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get new HEAD: %w", err)
	}
	toSHA := newRef.Hash().String()

	result := &PullResult{FromSHA: fromSHA, ToSHA: toSHA, HadChanges: fromSHA != toSHA}
	if result.HadChanges {
		files, err := r.changedFiles(fromSHA, toSHA)
		if err != nil {
			return nil, fmt.Errorf("failed to get changed files: %w", err)
		}
		result.ChangedFiles = files
		r.stats.LastCommitSHA = toSHA
	}
	return result, nil
}

// CurrentCommit returns the HEAD commit of the local clone.
func (r *Repository) CurrentCommit() (*CommitInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.repo == nil {
		return nil, ErrNotCloned
	}

	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}
	return r.commitInfo(commit), nil
}

// ListPackFiles returns the pack files under the configured path, skipping
// hidden files and directories.
func (r *Repository) ListPackFiles() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	root := r.packPath()
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("pack path does not exist: %w", err)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && isPackFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk pack directory: %w", err)
	}
	return files, nil
}

// ChangedFiles returns the paths, relative to the repository root, that
// differ between two commits.
func (r *Repository) ChangedFiles(fromSHA, toSHA string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.changedFiles(fromSHA, toSHA)
}

func (r *Repository) changedFiles(fromSHA, toSHA string) ([]string, error) {
	if r.repo == nil {
		return nil, ErrNotCloned
	}

	fromTree, err := r.tree(fromSHA)
	if err != nil {
		return nil, err
	}
	toTree, err := r.tree(toSHA)
	if err != nil {
		return nil, err
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	files := make([]string, 0, len(changes))
	for _, change := range changes {
		if change.To.Name != "" {
			files = append(files, change.To.Name)
		} else if change.From.Name != "" {
			files = append(files, change.From.Name)
		}
	}
	return files, nil
}

func (r *Repository) tree(sha string) (*object.Tree, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", shortSHA(sha), err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree of %s: %w", shortSHA(sha), err)
	}
	return tree, nil
}

// Rollback checks out targetSHA in the working tree.
func (r *Repository) Rollback(ctx context.Context, targetSHA string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return ErrNotCloned
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	hash := plumbing.NewHash(targetSHA)
	if _, err := r.repo.CommitObject(hash); err != nil {
		return fmt.Errorf("target commit not found: %w", err)
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := worktree.Checkout(&gogit.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return fmt.Errorf("failed to checkout commit %s: %w", shortSHA(targetSHA), err)
	}
	return nil
}

// CommitHistory returns up to limit commits reachable from HEAD, newest
// first.
func (r *Repository) CommitHistory(limit int) ([]*CommitInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.repo == nil {
		return nil, ErrNotCloned
	}

	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	iter, err := r.repo.Log(&gogit.LogOptions{From: ref.Hash()})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log: %w", err)
	}
	defer iter.Close()

	var history []*CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if len(history) >= limit {
			return storer.ErrStop
		}
		history = append(history, r.commitInfo(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}
	return history, nil
}

// Stats returns a copy of the operation counters.
func (r *Repository) Stats() RepositoryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// LocalPath returns the directory holding the clone.
func (r *Repository) LocalPath() string {
	return r.localPath
}

// PackPath returns the directory inside the clone that holds packs.
func (r *Repository) PackPath() string {
	return r.packPath()
}

func (r *Repository) packPath() string {
	return filepath.Join(r.localPath, r.config.Path)
}

func (r *Repository) commitInfo(c *object.Commit) *CommitInfo {
	return &CommitInfo{
		SHA:        c.Hash.String(),
		Author:     c.Author.Name,
		Email:      c.Author.Email,
		Timestamp:  c.Author.When,
		Message:    strings.TrimSpace(c.Message),
		Branch:     r.config.Branch,
		Repository: r.config.Repository,
	}
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config.Poll.Timeout > 0 {
		return context.WithTimeout(ctx, r.config.Poll.Timeout)
	}
	return context.WithCancel(ctx)
}

func isPackFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range PackExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
