// Package gitsource synchronizes a shared guardrail manifest repository
// to a local directory. The guardrails config surface accepts a remote
// `repo` URL; this package is the collaborator that fetches it. The
// synced checkout is handed to the guardrail loader as one more
// manifest root.
package gitsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Config describes the remote guardrail repository.
type Config struct {
	// URL is the clone URL of the shared manifest repository.
	URL string

	// Branch is the branch to track. Default: "main".
	Branch string

	// LocalPath is where the checkout lives. Defaults to a directory
	// under the OS temp dir derived from nothing sensitive.
	LocalPath string

	// Subdir is an optional path inside the repository that holds the
	// guardrails root. Empty means the repository root itself.
	Subdir string

	// Token is an optional bearer token for private repositories.
	Token string

	// Timeout bounds each network operation. Default: 60s.
	Timeout time.Duration
}

// applyDefaults fills zero-value fields with their defaults.
func (c *Config) applyDefaults() {
	if c.Branch == "" {
		c.Branch = "main"
	}
	if c.LocalPath == "" {
		c.LocalPath = filepath.Join(os.TempDir(), "railguard-manifests")
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}

// Repository manages the local checkout of the shared manifest repo.
type Repository struct {
	config Config
	logger *slog.Logger

	mu   sync.Mutex
	repo *gogit.Repository
}

// NewRepository creates a repository manager. The URL must be non-empty.
func NewRepository(cfg Config, logger *slog.Logger) (*Repository, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	cfg.applyDefaults()

	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		config: cfg,
		logger: logger.With("component", "guardrails.gitsource"),
	}, nil
}

// Dir returns the local directory that serves as a guardrails root:
// the checkout path joined with the configured subdir.
func (r *Repository) Dir() string {
	return filepath.Join(r.config.LocalPath, r.config.Subdir)
}

// Sync brings the local checkout up to date: it clones on first use and
// pulls afterwards. It reports whether the checkout changed, so callers
// know to rebuild the guardrail snapshot.
func (r *Repository) Sync(ctx context.Context) (changed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	if r.repo == nil {
		if err := r.open(opCtx); err != nil {
			return false, err
		}
		// A fresh clone always counts as changed.
		return true, nil
	}

	head, err := r.repo.Head()
	if err != nil {
		return false, fmt.Errorf("failed to read HEAD: %w", err)
	}
	before := head.Hash()

	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.PullContext(opCtx, &gogit.PullOptions{
		RemoteName: "origin",
		Auth:       r.auth(),
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return false, fmt.Errorf("failed to pull manifest repository: %w", err)
	}

	head, err = r.repo.Head()
	if err != nil {
		return false, fmt.Errorf("failed to read HEAD after pull: %w", err)
	}

	changed = head.Hash() != before
	if changed {
		r.logger.Info("manifest repository updated",
			"from", before.String()[:8],
			"to", head.Hash().String()[:8],
		)
	}
	return changed, nil
}

// open clones the remote or opens an existing checkout.
func (r *Repository) open(ctx context.Context) error {
	gitDir := filepath.Join(r.config.LocalPath, ".git")
	if _, err := os.Stat(gitDir); err == nil {
		repo, err := gogit.PlainOpen(r.config.LocalPath)
		if err != nil {
			return fmt.Errorf("failed to open existing checkout: %w", err)
		}
		r.repo = repo
		return nil
	}

	if err := os.MkdirAll(r.config.LocalPath, 0o755); err != nil {
		return fmt.Errorf("failed to create checkout directory: %w", err)
	}

	r.logger.Info("cloning manifest repository",
		"url", r.config.URL,
		"branch", r.config.Branch,
		"path", r.config.LocalPath,
	)

	repo, err := gogit.PlainCloneContext(ctx, r.config.LocalPath, false, &gogit.CloneOptions{
		URL:           r.config.URL,
		ReferenceName: plumbing.NewBranchReferenceName(r.config.Branch),
		SingleBranch:  true,
		Depth:         1,
		Auth:          r.auth(),
	})
	if err != nil {
		return fmt.Errorf("failed to clone manifest repository: %w", err)
	}

	r.repo = repo
	return nil
}

// auth builds HTTP token auth when a token is configured.
func (r *Repository) auth() *http.BasicAuth {
	if r.config.Token == "" {
		return nil
	}
	// go-git expects a non-empty username with token auth.
	return &http.BasicAuth{Username: "railguard", Password: r.config.Token}
}
