package aur

import (
	"errors"
	"fmt"
	"net/url"
	"path"
)

// SearchBy selects the dimension an RPC search matches against.
type SearchBy string

// Search dimensions understood by the AUR RPC v5 interface.
const (
	SearchByName         SearchBy = "name"
	SearchByNameDesc     SearchBy = "name-desc"
	SearchByMaintainer   SearchBy = "maintainer"
	SearchByDepends      SearchBy = "depends"
	SearchByMakeDepends  SearchBy = "makedepends"
	SearchByOptDepends   SearchBy = "optdepends"
	SearchByCheckDepends SearchBy = "checkdepends"
)

// ParseSearchBy validates a user-supplied search dimension.
func ParseSearchBy(s string) (SearchBy, error) {
	switch by := SearchBy(s); by {
	case SearchByName, SearchByNameDesc, SearchByMaintainer,
		SearchByDepends, SearchByMakeDepends, SearchByOptDepends, SearchByCheckDepends:
		return by, nil
	default:
		return "", fmt.Errorf("invalid search dimension %q", s)
	}
}

// RpcRequest describes one call against the /rpc endpoint. Immutable once
// queued; construct via NewSearchRequest or NewInfoRequest.
type RpcRequest struct {
	query url.Values
	err   error
}

// NewSearchRequest builds a search query for a single term.
func NewSearchRequest(by SearchBy, term string) *RpcRequest {
	r := &RpcRequest{query: url.Values{}}
	if term == "" {
		r.err = errors.New("search request: empty search term")
		return r
	}
	if by == "" {
		by = SearchByNameDesc
	}
	r.query.Set("v", "5")
	r.query.Set("type", "search")
	r.query.Set("by", string(by))
	r.query.Set("arg", term)
	return r
}

// NewInfoRequest builds an info query for one or more package names.
func NewInfoRequest(pkgs ...string) *RpcRequest {
	r := &RpcRequest{query: url.Values{}}
	if len(pkgs) == 0 {
		r.err = errors.New("info request: no package names")
		return r
	}
	r.query.Set("v", "5")
	r.query.Set("type", "info")
	for _, p := range pkgs {
		if p == "" {
			r.err = errors.New("info request: empty package name")
			return r
		}
		r.query.Add("arg[]", p)
	}
	return r
}

func (r *RpcRequest) validate() error { return r.err }

// URL resolves the request against the engine's base URL.
func (r *RpcRequest) URL(base string) string {
	return base + "/rpc?" + r.query.Encode()
}

// RawRequest describes a plain byte download: a snapshot tarball or a
// PKGBUILD. Construct via NewTarballRequest or NewPkgbuildRequest.
type RawRequest struct {
	urlPath string
	err     error
}

// NewTarballRequest builds a download request for pkg's snapshot tarball.
func NewTarballRequest(pkg string) *RawRequest {
	if pkg == "" {
		return &RawRequest{err: errors.New("tarball request: empty package name")}
	}
	return &RawRequest{
		urlPath: "/cgit/aur.git/snapshot/" + url.PathEscape(pkg) + ".tar.gz",
	}
}

// NewPkgbuildRequest builds a download request for pkg's PKGBUILD.
func NewPkgbuildRequest(pkg string) *RawRequest {
	if pkg == "" {
		return &RawRequest{err: errors.New("pkgbuild request: empty package name")}
	}
	return &RawRequest{
		urlPath: "/cgit/aur.git/plain/PKGBUILD?h=" + url.QueryEscape(pkg),
	}
}

func (r *RawRequest) validate() error { return r.err }

// URL resolves the request against the engine's base URL.
func (r *RawRequest) URL(base string) string {
	return base + r.urlPath
}

// CloneRequest describes a git clone (or update fetch) of a package
// repository.
type CloneRequest struct {
	// Reponame is the repository name under the AUR, without the .git suffix.
	Reponame string

	// Dest is the checkout directory. Empty means a directory named after
	// the repository in the current working directory.
	Dest string
}

// NewCloneRequest builds a clone request for the named repository.
func NewCloneRequest(reponame string) *CloneRequest {
	return &CloneRequest{Reponame: reponame}
}

func (r *CloneRequest) validate() error {
	if r.Reponame == "" {
		return errors.New("clone request: empty repository name")
	}
	return nil
}

func (r *CloneRequest) dest() string {
	if r.Dest != "" {
		return r.Dest
	}
	return r.Reponame
}

// URL resolves the repository's clone URL against the engine's base URL.
func (r *CloneRequest) URL(base string) string {
	return base + "/" + path.Clean(r.Reponame) + ".git"
}
