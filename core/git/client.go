// Package git supplies the repository-facing collaborators of the
// pipeline: worktree-root discovery for the default search base, and
// the optional working-tree diff whose presence toggles diff mode.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/adalundhe/weft/core/detect"
)

// =============================================================================
// Errors
// =============================================================================

var (
	ErrEmptyPath      = errors.New("repository path cannot be empty")
	ErrNotRepository  = errors.New("path is not inside a git repository")
	ErrGitUnavailable = errors.New("git is not installed or not in PATH")
)

// =============================================================================
// Client
// =============================================================================

// Client wraps one repository. go-git answers introspection queries;
// diff text comes from the git CLI, which go-git does not render for
// the working tree.
type Client struct {
	startPath string
	gitPath   string
	repo      *gogit.Repository
}

// NewClient opens the repository enclosing startPath, searching parent
// directories for the .git dir. The returned client is valid even
// outside a repository; operations then report ErrNotRepository.
func NewClient(startPath string) (*Client, error) {
	if startPath == "" {
		return nil, ErrEmptyPath
	}

	abs, err := filepath.Abs(startPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	client := &Client{
		startPath: abs,
		gitPath:   detect.Which("git"),
	}

	opts := &gogit.PlainOpenOptions{DetectDotGit: true}
	if repo, openErr := gogit.PlainOpenWithOptions(abs, opts); openErr == nil {
		client.repo = repo
	}

	return client, nil
}

// IsRepo reports whether startPath sits inside a git repository.
func (c *Client) IsRepo() bool {
	return c.repo != nil
}

// Root returns the worktree root directory, the default search base
// when no explicit base dir is configured.
func (c *Client) Root() (string, error) {
	if c.repo != nil {
		if wt, err := c.repo.Worktree(); err == nil {
			return wt.Filesystem.Root(), nil
		}
	}

	return c.rootFromCLI()
}

// rootFromCLI asks the git binary directly, covering layouts go-git
// cannot open (bare-adjacent worktrees, unusual common dirs).
func (c *Client) rootFromCLI() (string, error) {
	if c.repo == nil && c.gitPath == "" {
		return "", ErrNotRepository
	}

	out, err := c.runGit("rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}

// hasHead reports whether the repository has any commit to diff
// against.
func (c *Client) hasHead() bool {
	if c.repo == nil {
		return false
	}

	_, err := c.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false
	}
	return err == nil
}

// =============================================================================
// CLI bridge
// =============================================================================

// runGit executes one git command rooted at startPath.
func (c *Client) runGit(args ...string) (string, error) {
	if c.gitPath == "" {
		return "", ErrGitUnavailable
	}

	cmd := exec.Command(c.gitPath, args...)
	cmd.Dir = c.startPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", parseGitError(err, stderr.String())
	}

	return stdout.String(), nil
}

// parseGitError converts git CLI failures into package error types.
func parseGitError(err error, stderr string) error {
	if strings.Contains(stderr, "not a git repository") {
		return ErrNotRepository
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("git command failed: %s", strings.TrimSpace(stderr))
	}

	return err
}
