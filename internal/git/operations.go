package git

import (
	"os/exec"
	"strings"
)

// Operations defines the interface for git operations.
// This allows mocking git commands in tests.
type Operations interface {
	// GetCurrentBranch returns the current branch name.
	// For detached HEAD, returns "detached-{short-hash}".
	// Returns "unknown" if all git commands fail.
	GetCurrentBranch(projectPath string) string

	// GetHeadCommit returns the full HEAD commit hash, or "" outside a
	// repository.
	GetHeadCommit(projectPath string) string

	// GetRemoteURL returns the URL of the named remote.
	// Falls back to the first available remote when the named one is
	// missing. Returns empty string if no remote configured.
	GetRemoteURL(projectPath, remote string) string

	// GetWorktreeRoot returns the git worktree root path.
	// Falls back to projectPath if not a git repository.
	GetWorktreeRoot(projectPath string) string

	// IsFileDirty reports whether the file has uncommitted changes
	// (staged or unstaged) relative to HEAD.
	IsFileDirty(projectPath, relPath string) bool

	// GetDiff returns the raw "git diff HEAD" output for one file.
	GetDiff(projectPath, relPath string) (string, error)

	// ChangedFilesSince lists the paths changed since the given ref,
	// relative to the repository root. A bare ref diffs against HEAD;
	// a ref containing ".." is used as the range verbatim.
	ChangedFilesSince(projectPath, since string) ([]string, error)

	// DiffSince returns the raw unified diff since the given ref, with
	// the same range handling as ChangedFilesSince.
	DiffSince(projectPath, since string) (string, error)

	// DetectBaseRef finds the merge base with main or master, falling
	// back to "HEAD~1" when neither branch exists.
	DetectBaseRef(projectPath string) string
}

func diffRangeFor(since string) string {
	if strings.Contains(since, "..") {
		return since
	}
	return since + "..HEAD"
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func (g *gitOps) GetCurrentBranch(projectPath string) string {
	cmd := exec.Command("git", "branch", "--show-current")
	cmd.Dir = projectPath
	output, err := cmd.Output()
	if err != nil || len(strings.TrimSpace(string(output))) == 0 {
		// Might be detached HEAD
		cmd = exec.Command("git", "rev-parse", "--short", "HEAD")
		cmd.Dir = projectPath
		output, err = cmd.Output()
		if err != nil {
			return "unknown"
		}
		return "detached-" + strings.TrimSpace(string(output))
	}
	return strings.TrimSpace(string(output))
}

func (g *gitOps) GetHeadCommit(projectPath string) string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = projectPath
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

func (g *gitOps) GetRemoteURL(projectPath, remote string) string {
	cmd := exec.Command("git", "remote", "get-url", remote)
	cmd.Dir = projectPath
	output, err := cmd.Output()
	if err == nil {
		return strings.TrimSpace(string(output))
	}

	// Fallback: first remote
	cmd = exec.Command("git", "remote")
	cmd.Dir = projectPath
	output, err = cmd.Output()
	if err != nil {
		return ""
	}

	remotes := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(remotes) > 0 && remotes[0] != "" {
		cmd = exec.Command("git", "remote", "get-url", remotes[0])
		cmd.Dir = projectPath
		output, _ = cmd.Output()
		return strings.TrimSpace(string(output))
	}

	return ""
}

func (g *gitOps) GetWorktreeRoot(projectPath string) string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = projectPath
	output, err := cmd.Output()
	if err != nil {
		return projectPath
	}
	return strings.TrimSpace(string(output))
}

func (g *gitOps) IsFileDirty(projectPath, relPath string) bool {
	cmd := exec.Command("git", "diff", "--quiet", "HEAD", "--", relPath)
	cmd.Dir = projectPath
	return cmd.Run() != nil
}

func (g *gitOps) GetDiff(projectPath, relPath string) (string, error) {
	cmd := exec.Command("git", "diff", "HEAD", "--", relPath)
	cmd.Dir = projectPath
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

func (g *gitOps) ChangedFilesSince(projectPath, since string) ([]string, error) {
	cmd := exec.Command("git", "diff", diffRangeFor(since), "--name-only")
	cmd.Dir = projectPath
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

func (g *gitOps) DiffSince(projectPath, since string) (string, error) {
	cmd := exec.Command("git", "diff", diffRangeFor(since), "--unified=3")
	cmd.Dir = projectPath
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

func (g *gitOps) DetectBaseRef(projectPath string) string {
	for _, branch := range []string{"main", "master"} {
		cmd := exec.Command("git", "merge-base", "HEAD", branch)
		cmd.Dir = projectPath
		if output, err := cmd.Output(); err == nil {
			return strings.TrimSpace(string(output))
		}
	}
	return "HEAD~1"
}
