package store

import (
	"context"
	"errors"
	"testing"

	"github.com/auric-sh/auric/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeTestPackage(name string) model.Package {
	return model.Package{
		Name:         name,
		PackageBase:  name,
		Version:      "1.0-1",
		Description:  "a test package",
		Maintainer:   "someone",
		URL:          "https://example.com/" + name,
		NumVotes:     42,
		Popularity:   1.5,
		LastModified: 1625689497,
	}
}

func TestUpsertAndGetPackage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := makeTestPackage("auracle-git")
	if err := s.UpsertPackages(ctx, []model.Package{p}); err != nil {
		t.Fatalf("UpsertPackages: %v", err)
	}

	got, err := s.GetPackage(ctx, "auracle-git")
	if err != nil {
		t.Fatalf("GetPackage: %v", err)
	}
	if got.Name != p.Name {
		t.Errorf("Name = %q, want %q", got.Name, p.Name)
	}
	if got.Version != p.Version {
		t.Errorf("Version = %q, want %q", got.Version, p.Version)
	}
	if got.NumVotes != p.NumVotes {
		t.Errorf("NumVotes = %d, want %d", got.NumVotes, p.NumVotes)
	}
	if got.OutOfDate != nil {
		t.Errorf("OutOfDate = %v, want nil", got.OutOfDate)
	}
}

func TestGetPackageNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPackage(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpsertReplacesExistingRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := makeTestPackage("pkgfile")
	if err := s.UpsertPackages(ctx, []model.Package{p}); err != nil {
		t.Fatalf("UpsertPackages: %v", err)
	}

	p.Version = "2.0-1"
	ood := int64(1700000000)
	p.OutOfDate = &ood
	if err := s.UpsertPackages(ctx, []model.Package{p}); err != nil {
		t.Fatalf("UpsertPackages (update): %v", err)
	}

	got, err := s.GetPackage(ctx, "pkgfile")
	if err != nil {
		t.Fatalf("GetPackage: %v", err)
	}
	if got.Version != "2.0-1" {
		t.Errorf("Version = %q, want %q", got.Version, "2.0-1")
	}
	if got.OutOfDate == nil || *got.OutOfDate != ood {
		t.Errorf("OutOfDate = %v, want %d", got.OutOfDate, ood)
	}
}

func TestUpsertEmptySliceIsNoop(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertPackages(context.Background(), nil); err != nil {
		t.Errorf("UpsertPackages(nil) = %v, want nil", err)
	}
}

func TestSearchByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pkgs := []model.Package{
		makeTestPackage("auracle-git"),
		makeTestPackage("aurutils"),
		makeTestPackage("pkgfile"),
	}
	if err := s.UpsertPackages(ctx, pkgs); err != nil {
		t.Fatalf("UpsertPackages: %v", err)
	}

	got, err := s.SearchByName(ctx, "aur")
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d packages, want 2: %+v", len(got), got)
	}
	if got[0].Name != "auracle-git" || got[1].Name != "aurutils" {
		t.Errorf("results out of order: %q, %q", got[0].Name, got[1].Name)
	}

	none, err := s.SearchByName(ctx, "zzz")
	if err != nil {
		t.Fatalf("SearchByName(zzz): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("got %d packages, want 0", len(none))
	}
}
