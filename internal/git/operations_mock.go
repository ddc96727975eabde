package git

import "fmt"

// MockGitOps is a mock implementation of Operations for testing.
type MockGitOps struct {
	CurrentBranch string
	HeadCommit    string
	RemoteURL     string
	WorktreeRoot  string
	DirtyFiles    map[string]bool
	Diffs         map[string]string
	DiffError     error
	ChangedFiles  []string
	RangeDiff     string
	BaseRef       string
}

// NewMockGitOps creates a mock with sensible defaults.
func NewMockGitOps() *MockGitOps {
	return &MockGitOps{
		CurrentBranch: "main",
		HeadCommit:    "0123456789abcdef0123456789abcdef01234567",
		RemoteURL:     "https://github.com/user/repo.git",
		WorktreeRoot:  "/tmp/test-repo",
		DirtyFiles:    map[string]bool{},
		Diffs:         map[string]string{},
	}
}

func (m *MockGitOps) GetCurrentBranch(projectPath string) string {
	return m.CurrentBranch
}

func (m *MockGitOps) GetHeadCommit(projectPath string) string {
	return m.HeadCommit
}

func (m *MockGitOps) GetRemoteURL(projectPath, remote string) string {
	return m.RemoteURL
}

func (m *MockGitOps) GetWorktreeRoot(projectPath string) string {
	return m.WorktreeRoot
}

func (m *MockGitOps) IsFileDirty(projectPath, relPath string) bool {
	return m.DirtyFiles[relPath]
}

func (m *MockGitOps) GetDiff(projectPath, relPath string) (string, error) {
	if m.DiffError != nil {
		return "", m.DiffError
	}
	return m.Diffs[relPath], nil
}

func (m *MockGitOps) ChangedFilesSince(projectPath, since string) ([]string, error) {
	return m.ChangedFiles, nil
}

func (m *MockGitOps) DiffSince(projectPath, since string) (string, error) {
	if m.DiffError != nil {
		return "", m.DiffError
	}
	return m.RangeDiff, nil
}

func (m *MockGitOps) DetectBaseRef(projectPath string) string {
	if m.BaseRef != "" {
		return m.BaseRef
	}
	return "HEAD~1"
}

// String returns a human-readable representation of the mock state.
func (m *MockGitOps) String() string {
	return fmt.Sprintf("MockGitOps{branch=%s, commit=%s, remote=%s}",
		m.CurrentBranch, m.HeadCommit, m.RemoteURL)
}
