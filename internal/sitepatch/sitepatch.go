// Package sitepatch rewrites the download-link mapping embedded in the
// website's script.js, hosted on GitHub. The patch is a single best-effort
// conditional write keyed on the file's current blob SHA; there are no
// retries.
package sitepatch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/go-github/v66/github"
)

// UpdateSentinel replaces a link when a platform is being patched and no
// replacement URL is given.
const UpdateSentinel = "update"

var (
	// ErrUnknownTarget is returned for a target outside the platform set.
	ErrUnknownTarget = errors.New("unknown download target")
	// ErrNoURLBlock is returned when script.js has no downloadUrls object.
	ErrNoURLBlock = errors.New("could not find the downloadUrls object")
	// ErrTargetNotFound is returned when no platform key matched in the block.
	ErrTargetNotFound = errors.New("no download link found for the target")
)

// platformKeys maps command targets to the keys used inside script.js.
var platformKeys = map[string]string{
	"windows":   "windows",
	"macos":     "macos",
	"linux":     "linux",
	"android":   "android",
	"ios":       "ios",
	"scripthub": "scriptHub",
}

var urlBlockPattern = regexp.MustCompile(`const downloadUrls = \{([^}]*)\}`)

// NormalizeLink prepends https:// to a link with no scheme. The update
// sentinel passes through untouched.
func NormalizeLink(link string) (normalized string, changed bool) {
	if link == "" || link == UpdateSentinel {
		return link, false
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link, false
	}
	return "https://" + link, true
}

// RewriteDownloadURLs replaces the link for target (or every platform when
// target is "all") inside the script source. An empty newLink writes the
// update sentinel.
func RewriteDownloadURLs(source, target, newLink string) (string, error) {
	target = strings.ToLower(target)
	if target != "all" {
		if _, ok := platformKeys[target]; !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownTarget, target)
		}
	}
	if newLink == "" {
		newLink = UpdateSentinel
	}

	m := urlBlockPattern.FindStringSubmatchIndex(source)
	if m == nil {
		return "", ErrNoURLBlock
	}
	block := source[m[2]:m[3]]

	var keys []string
	if target == "all" {
		for _, key := range platformKeys {
			keys = append(keys, key)
		}
	} else {
		keys = append(keys, platformKeys[target])
	}

	updated := false
	for _, key := range keys {
		pattern := regexp.MustCompile(key + `:\s*['"]([^'"]+)['"]`)
		if pattern.MatchString(block) {
			block = pattern.ReplaceAllString(block, key+": '"+newLink+"'")
			updated = true
		}
	}
	if !updated {
		return "", fmt.Errorf("%w: %q", ErrTargetNotFound, target)
	}

	return source[:m[2]] + block + source[m[3]:], nil
}

// CommitMessage synthesizes the commit message for a patch.
func CommitMessage(target, link string) string {
	scope := "all platforms"
	if target != "all" {
		scope = target
	}
	if link == "" || link == UpdateSentinel {
		return fmt.Sprintf("Set download link for %s to %q", scope, UpdateSentinel)
	}
	return fmt.Sprintf("Update download link for %s to %s", scope, link)
}

// ContentsAPI is the slice of the GitHub repositories service the patcher
// needs. *github.RepositoriesService satisfies it.
type ContentsAPI interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
}

// Patcher reads, rewrites and commits the site script.
type Patcher struct {
	api    ContentsAPI
	owner  string
	repo   string
	path   string
	branch string
}

// NewPatcher creates a patcher for one file in one repository.
func NewPatcher(api ContentsAPI, owner, repo, path, branch string) *Patcher {
	return &Patcher{api: api, owner: owner, repo: repo, path: path, branch: branch}
}

// Patch fetches the script, rewrites the download link for target, and
// commits the result against the fetched revision. Returns the normalized
// link that was written.
func (p *Patcher) Patch(ctx context.Context, target, newLink string) (string, error) {
	link, _ := NormalizeLink(newLink)

	fc, _, _, err := p.api.GetContents(ctx, p.owner, p.repo, p.path, &github.RepositoryContentGetOptions{
		Ref: p.branch,
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", p.path, err)
	}
	if fc == nil {
		return "", fmt.Errorf("%s is not a file", p.path)
	}
	source, err := fc.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", p.path, err)
	}

	rewritten, err := RewriteDownloadURLs(source, target, link)
	if err != nil {
		return "", err
	}

	_, _, err = p.api.UpdateFile(ctx, p.owner, p.repo, p.path, &github.RepositoryContentFileOptions{
		Message: github.String(CommitMessage(target, link)),
		Content: []byte(rewritten),
		SHA:     fc.SHA,
		Branch:  github.String(p.branch),
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit %s: %w", p.path, err)
	}
	if link == "" {
		link = UpdateSentinel
	}
	return link, nil
}
