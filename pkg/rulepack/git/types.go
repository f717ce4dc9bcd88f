package git

import (
	"time"
)

// CommitInfo describes the commit rule packs were read from.
type CommitInfo struct {
	SHA        string    `json:"sha"`
	Author     string    `json:"author"`
	Email      string    `json:"email"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	Branch     string    `json:"branch"`
	Repository string    `json:"repository"`
}

// Short returns the abbreviated SHA.
func (c *CommitInfo) Short() string {
	return shortSHA(c.SHA)
}

// PullResult contains the result of a pull.
type PullResult struct {
	FromSHA      string
	ToSHA        string
	ChangedFiles []string
	HadChanges   bool
}

// RepositoryStats tracks Git operation counters.
type RepositoryStats struct {
	CloneDuration   time.Duration
	PullDuration    time.Duration
	LastCommitSHA   string
	LastPullTime    time.Time
	FailedPulls     int64
	SuccessfulPulls int64
}

// WatcherStats tracks watcher counters.
type WatcherStats struct {
	Polls             int64
	SuccessfulReloads int64
	FailedReloads     int64
	Rollbacks         int64
	SkippedPolls      int64
	LastReloadTime    time.Time
	LastReloadDur     time.Duration
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
