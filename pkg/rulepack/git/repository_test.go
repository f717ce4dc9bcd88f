package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"a11y-hq/lumen/pkg/config"
)

const basePack = "rules:\n  - id: Base\n    condition: true\n"

// createTestRepo initialises a repository holding one pack under packs/.
func createTestRepo(t *testing.T, dir string) *gogit.Repository {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	commitFile(t, repo, dir, "packs/base.yaml", basePack, "initial commit")
	return repo
}

func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content, msg string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := worktree.Add(name); err != nil {
		t.Fatalf("failed to add %s: %v", name, err)
	}
	hash, err := worktree.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}

func testConfig(t *testing.T, source string) *config.GitRulesConfig {
	t.Helper()
	return &config.GitRulesConfig{
		Enabled:    true,
		Repository: source,
		Branch:     "master", // go-git init creates master
		Path:       "packs",
		Auth:       config.GitAuthConfig{Type: AuthNone},
		Poll:       config.GitPollConfig{Timeout: 10 * time.Second},
		Clone:      config.GitCloneConfig{LocalPath: t.TempDir()},
	}
}

func clonedRepo(t *testing.T, source string) *Repository {
	t.Helper()
	r, err := NewRepository(testConfig(t, source))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if err := r.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	return r
}

func TestNewRepository(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.GitRulesConfig
		wantErr bool
	}{
		{"nil config", nil, true},
		{"empty repository", &config.GitRulesConfig{Branch: "main"}, true},
		{"empty branch", &config.GitRulesConfig{Repository: "https://example.com/r.git"}, true},
		{"unknown auth", &config.GitRulesConfig{Repository: "https://example.com/r.git", Branch: "main", Auth: config.GitAuthConfig{Type: "kerberos"}}, true},
		{"valid", &config.GitRulesConfig{Repository: "https://example.com/r.git", Branch: "main"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRepository(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRepository() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && r.LocalPath() != filepath.Join(os.TempDir(), "lumen-rules") {
				t.Errorf("LocalPath() = %q, want temp default", r.LocalPath())
			}
		})
	}
}

func TestRepository_Clone(t *testing.T) {
	source := t.TempDir()
	createTestRepo(t, source)

	r := clonedRepo(t, source)
	if r.Stats().CloneDuration == 0 {
		t.Error("Clone() did not record duration")
	}

	files, err := r.ListPackFiles()
	if err != nil {
		t.Fatalf("ListPackFiles() error = %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "base.yaml" {
		t.Errorf("ListPackFiles() = %v", files)
	}

	// A second Clone into the same path opens the existing checkout.
	again, err := NewRepository(r.config)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if err := again.Clone(context.Background()); err != nil {
		t.Errorf("re-open Clone() error = %v", err)
	}
}

func TestRepository_CloneMissingRemote(t *testing.T) {
	r, err := NewRepository(testConfig(t, "/nonexistent/repo"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if err := r.Clone(context.Background()); err == nil {
		t.Error("Clone() of a missing remote should fail")
	}
}

func TestRepository_NotCloned(t *testing.T) {
	r, err := NewRepository(testConfig(t, "/unused"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	if _, err := r.Pull(context.Background()); !errors.Is(err, ErrNotCloned) {
		t.Errorf("Pull() error = %v, want ErrNotCloned", err)
	}
	if _, err := r.CurrentCommit(); !errors.Is(err, ErrNotCloned) {
		t.Errorf("CurrentCommit() error = %v, want ErrNotCloned", err)
	}
	if err := r.Rollback(context.Background(), "abc"); !errors.Is(err, ErrNotCloned) {
		t.Errorf("Rollback() error = %v, want ErrNotCloned", err)
	}
}

func TestRepository_PullAndChangedFiles(t *testing.T) {
	source := t.TempDir()
	upstream := createTestRepo(t, source)
	r := clonedRepo(t, source)

	result, err := r.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if result.HadChanges {
		t.Errorf("first Pull() HadChanges = true")
	}

	commitFile(t, upstream, source, "packs/extra.yml", basePack, "add extra")
	commitFile(t, upstream, source, "README.md", "docs", "docs")

	result, err = r.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if !result.HadChanges {
		t.Fatal("Pull() HadChanges = false after new commits")
	}
	if len(result.ChangedFiles) != 2 {
		t.Errorf("ChangedFiles = %v, want 2 files", result.ChangedFiles)
	}
	if !hasPackChanges(result.ChangedFiles) {
		t.Error("hasPackChanges() = false, want true")
	}

	stats := r.Stats()
	if stats.SuccessfulPulls != 2 || stats.LastCommitSHA != result.ToSHA {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestRepository_CurrentCommitAndHistory(t *testing.T) {
	source := t.TempDir()
	upstream := createTestRepo(t, source)
	second := commitFile(t, upstream, source, "packs/two.yaml", basePack, "second commit\n")
	r := clonedRepo(t, source)

	commit, err := r.CurrentCommit()
	if err != nil {
		t.Fatalf("CurrentCommit() error = %v", err)
	}
	if commit.SHA != second || commit.Message != "second commit" || commit.Branch != "master" {
		t.Errorf("CurrentCommit() = %+v", commit)
	}
	if commit.Short() != second[:8] {
		t.Errorf("Short() = %q", commit.Short())
	}

	history, err := r.CommitHistory(1)
	if err != nil {
		t.Fatalf("CommitHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].SHA != second {
		t.Errorf("CommitHistory(1) = %v", history)
	}

	history, err = r.CommitHistory(10)
	if err != nil {
		t.Fatalf("CommitHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("len(CommitHistory(10)) = %d, want 2", len(history))
	}
}

func TestRepository_Rollback(t *testing.T) {
	source := t.TempDir()
	upstream := createTestRepo(t, source)
	head, _ := upstream.Head()
	first := head.Hash().String()
	commitFile(t, upstream, source, "packs/two.yaml", basePack, "second")

	r := clonedRepo(t, source)
	if err := r.Rollback(context.Background(), first); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(r.PackPath(), "two.yaml")); !os.IsNotExist(err) {
		t.Errorf("two.yaml still present after rollback: %v", err)
	}

	if err := r.Rollback(context.Background(), "0000000000000000000000000000000000000000"); err == nil {
		t.Error("Rollback() to a missing commit should fail")
	}
}
