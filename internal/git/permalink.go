package git

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var httpsGitHubRe = regexp.MustCompile(`^https?://github\.com/`)

// webURL converts a git remote URL to a browsable GitHub URL, or ""
// for non-GitHub remotes.
func webURL(remoteURL string) string {
	switch {
	case strings.HasPrefix(remoteURL, "git@github.com:"):
		repo := strings.TrimPrefix(remoteURL, "git@github.com:")
		return "https://github.com/" + strings.TrimSuffix(repo, ".git")
	case httpsGitHubRe.MatchString(remoteURL):
		repo := httpsGitHubRe.ReplaceAllString(remoteURL, "")
		return "https://github.com/" + strings.TrimSuffix(repo, ".git")
	default:
		return ""
	}
}

// Permalinker builds commit-pinned GitHub links for file line ranges.
// When the file has uncommitted changes (injected markers included), line
// numbers are remapped to the committed version via the file's diff so
// the anchor lands on the right lines.
type Permalinker struct {
	ops    Operations
	root   string
	remote string

	once   sync.Once
	url    string
	commit string

	mu        sync.Mutex
	diffCache map[string]string
}

// NewPermalinker creates a permalinker rooted at the repository worktree.
func NewPermalinker(ops Operations, root, remote string) *Permalinker {
	return &Permalinker{
		ops:       ops,
		root:      root,
		remote:    remote,
		diffCache: map[string]string{},
	}
}

func (p *Permalinker) init() {
	p.once.Do(func() {
		p.url = webURL(p.ops.GetRemoteURL(p.root, p.remote))
		p.commit = p.ops.GetHeadCommit(p.root)
	})
}

func (p *Permalinker) diffFor(relPath string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.diffCache[relPath]; ok {
		return d
	}
	d, err := p.ops.GetDiff(p.root, relPath)
	if err != nil {
		d = ""
	}
	p.diffCache[relPath] = d
	return d
}

// mapLine translates a working-copy line to the committed version when
// the file is dirty.
func (p *Permalinker) mapLine(relPath string, line int) int {
	if !p.ops.IsFileDirty(p.root, relPath) {
		return line
	}
	diff := p.diffFor(relPath)
	if diff == "" {
		return line
	}
	return MapLineToCommitted(line, diff)
}

// Permalink returns a markdown link to the file (and line range, when
// startLine > 0) pinned to the HEAD commit. Outside a GitHub repository
// it degrades to a plain path reference.
func (p *Permalinker) Permalink(path string, startLine, endLine int) string {
	p.init()

	relPath := path
	if filepath.IsAbs(path) {
		if r, err := filepath.Rel(p.root, path); err == nil {
			relPath = r
		}
	}
	relPath = filepath.ToSlash(relPath)

	if p.url == "" || p.commit == "" {
		if startLine > 0 {
			if endLine > startLine {
				return fmt.Sprintf("`%s:%d-%d`", relPath, startLine, endLine)
			}
			return fmt.Sprintf("`%s:%d`", relPath, startLine)
		}
		return fmt.Sprintf("`%s`", relPath)
	}

	url := fmt.Sprintf("%s/blob/%s/%s", p.url, p.commit, relPath)
	display := relPath
	if startLine > 0 {
		start := p.mapLine(relPath, startLine)
		if endLine > startLine {
			end := p.mapLine(relPath, endLine)
			url += fmt.Sprintf("#L%d-L%d", start, end)
			display = fmt.Sprintf("%s:%d-%d", relPath, start, end)
		} else {
			url += fmt.Sprintf("#L%d", start)
			display = fmt.Sprintf("%s:%d", relPath, start)
		}
	}
	return fmt.Sprintf("[`%s`](%s)", display, url)
}
