package cli

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/auric-sh/auric/internal/fakeaur"
)

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(fakeaur.NewServer(":0", slog.New(slog.NewTextHandler(io.Discard, nil))).Handler())
	t.Cleanup(srv.Close)
	return srv
}

// execute runs the CLI against the fake server with a per-test cache path.
func execute(t *testing.T, srv *httptest.Server, dbPath string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--baseurl", srv.URL, "--db", dbPath))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cache.db")
}

func TestSearchCommandQuiet(t *testing.T) {
	srv := newFakeServer(t)

	out, _, err := execute(t, srv, tempDB(t), "search", "--quiet", "aur")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := "auracle-git\naurutils\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestSearchCommandDeduplicatesTerms(t *testing.T) {
	srv := newFakeServer(t)

	single, _, err := execute(t, srv, tempDB(t), "search", "--quiet", "aur")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	double, _, err := execute(t, srv, tempDB(t), "search", "--quiet", "aur", "aur")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if single != double {
		t.Errorf("duplicated terms changed output: %q vs %q", single, double)
	}
}

func TestSearchCommandNoResultsSucceeds(t *testing.T) {
	srv := newFakeServer(t)

	out, _, err := execute(t, srv, tempDB(t), "search", "wontfindanypackages")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "" {
		t.Errorf("output = %q, want empty", out)
	}
}

func TestSearchCommandInvalidDimension(t *testing.T) {
	srv := newFakeServer(t)

	_, _, err := execute(t, srv, tempDB(t), "search", "--searchby", "notvalid", "term")
	if err == nil {
		t.Error("execute succeeded, want error for invalid search dimension")
	}
}

func TestInfoCommandPopulatesCache(t *testing.T) {
	srv := newFakeServer(t)
	db := tempDB(t)

	out, _, err := execute(t, srv, db, "info", "auracle-git")
	if err != nil {
		t.Fatalf("execute info: %v", err)
	}
	if !strings.Contains(out, "Name            : auracle-git") {
		t.Errorf("info output = %q", out)
	}

	// The fetched record is now served without the network.
	cached, _, err := execute(t, srv, db, "info", "--cached", "auracle-git")
	if err != nil {
		t.Fatalf("execute info --cached: %v", err)
	}
	if !strings.Contains(cached, "Name            : auracle-git") {
		t.Errorf("cached output = %q", cached)
	}
}

func TestInfoCachedMissesAreErrors(t *testing.T) {
	srv := newFakeServer(t)

	_, errOut, err := execute(t, srv, tempDB(t), "info", "--cached", "never-fetched")
	if err == nil {
		t.Error("execute succeeded, want error for cache miss")
	}
	if !strings.Contains(errOut, "not in cache") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestPkgbuildCommand(t *testing.T) {
	srv := newFakeServer(t)

	out, _, err := execute(t, srv, tempDB(t), "pkgbuild", "auracle-git")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "pkgname=auracle-git") {
		t.Errorf("output = %q", out)
	}
}

func TestDownloadCommandWritesTarball(t *testing.T) {
	srv := newFakeServer(t)
	outDir := t.TempDir()

	out, _, err := execute(t, srv, tempDB(t), "download", "--outdir", outDir, "auracle-git")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	dest := filepath.Join(outDir, "auracle-git.tar.gz")
	if !strings.Contains(out, dest) {
		t.Errorf("output = %q, want mention of %q", out, dest)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("tarball not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("tarball is empty")
	}
}

func TestDownloadCommandUnknownPackageFails(t *testing.T) {
	srv := newFakeServer(t)

	_, errOut, err := execute(t, srv, tempDB(t), "download", "--outdir", t.TempDir(), "no-such-package")
	if err == nil {
		t.Error("execute succeeded, want error")
	}
	if !strings.Contains(errOut, "no-such-package") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestCloneCommandUsesConfiguredGit(t *testing.T) {
	srv := newFakeServer(t)
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWD) })

	git := filepath.Join(t.TempDir(), "git")
	if err := os.WriteFile(git, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write fake git: %v", err)
	}

	out, _, err := execute(t, srv, tempDB(t), "clone", "--git", git, "auracle-git")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "clone auracle-git") {
		t.Errorf("output = %q", out)
	}
}
