package workspace

import (
	"net/url"
	"strings"
)

// branchMarkers are the provider-specific path encodings that embed a branch
// reference inside a repository URL.
var branchMarkers = []string{"/-/tree/", "/tree/", "/src/"}

// SplitRepoURL separates a user-supplied repository URL from an optional
// embedded branch reference. Supported encodings:
//
//	https://host/org/repo/tree/<branch>
//	https://host/org/repo/-/tree/<branch>
//	https://host/org/repo/src/<branch>
//	https://host/org/repo?version=GB<branch>
//
// The returned URL is the clean clone URL; branch is empty when the URL
// carries none.
func SplitRepoURL(raw string) (cloneURL, branch string) {
	cloneURL = raw

	if u, err := url.Parse(raw); err == nil {
		if version := u.Query().Get("version"); strings.HasPrefix(version, "GB") {
			branch = strings.TrimPrefix(version, "GB")
			u.RawQuery = ""
			cloneURL = u.String()
			return cloneURL, branch
		}
	}

	for _, marker := range branchMarkers {
		idx := strings.Index(cloneURL, marker)
		if idx < 0 {
			continue
		}
		branch = strings.Trim(cloneURL[idx+len(marker):], "/")
		cloneURL = cloneURL[:idx]
		return cloneURL, branch
	}

	return strings.TrimSuffix(cloneURL, "/"), ""
}

// RepoName derives the repository's short name from its clone URL.
func RepoName(cloneURL string) string {
	name := strings.TrimSuffix(cloneURL, "/")
	name = strings.TrimSuffix(name, ".git")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
