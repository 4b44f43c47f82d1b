package build

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/fastogt/fastobuild/internal/fetch"
	"github.com/fastogt/fastobuild/pkgs/buildsys/buildsystest"
	"github.com/fastogt/fastobuild/pkgs/platform"
)

// mockRunner records commands and resolves LookPath from a fixed table.
type mockRunner struct {
	*buildsystest.Recorder
	paths   map[string]string
	environ []string
}

func (m *mockRunner) LookPath(file string) (string, bool) {
	p, ok := m.paths[file]
	return p, ok
}

// mockFetcher fakes retrieval by creating source trees that contain the
// scripts the strategies look for.
type mockFetcher struct {
	mu     sync.Mutex
	clones []string
	urls   []string
	err    error
}

func (m *mockFetcher) Download(ctx context.Context, url, dir string) (string, error) {
	m.mu.Lock()
	m.urls = append(m.urls, url)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	file := filepath.Join(dir, filepath.Base(url))
	return file, os.WriteFile(file, []byte("archive"), 0o644)
}

func (m *mockFetcher) Extract(ctx context.Context, file, dir string) (string, error) {
	root := filepath.Join(dir, strings.TrimSuffix(filepath.Base(file), ".tar.gz"))
	if err := makeSourceTree(root); err != nil {
		return "", err
	}
	return root, os.Remove(file)
}

func (m *mockFetcher) Clone(ctx context.Context, url, branch, dir string, stripHistory bool) (string, error) {
	m.mu.Lock()
	m.clones = append(m.clones, url+"#"+branch)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	root := filepath.Join(dir, fetch.RepoName(url))
	return root, makeSourceTree(root)
}

func makeSourceTree(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	for _, name := range []string{"configure", "config"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("#!/bin/sh\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type fixture struct {
	session *Session
	runner  *mockRunner
	fetcher *mockFetcher
}

func debianProbe() (platform.Family, error) { return platform.FamilyDebian, nil }

// newFixture creates a session with fake runner and fetcher. platformName
// and arch default to linux/x86_64 on Debian.
func newFixture(t *testing.T, req Request, opts ...Option) *fixture {
	t.Helper()
	if req.Platform == "" {
		req.Platform = platform.Linux
	}
	if req.Arch == "" {
		req.Arch = "x86_64"
	}
	if req.BuildDir == "" {
		req.BuildDir = filepath.Join(t.TempDir(), "build")
	}
	if req.Prefix == "" {
		req.Prefix = filepath.Join(t.TempDir(), "prefix")
	}
	f := &fixture{fetcher: &mockFetcher{}}
	f.runner = &mockRunner{Recorder: &buildsystest.Recorder{}, paths: map[string]string{}}
	base := []Option{
		WithBaseEnv([]string{"PATH=/usr/bin", "HOME=" + t.TempDir()}),
		WithFetcher(f.fetcher),
		WithRunner(func(environ []string) Runner {
			f.runner.environ = environ
			return f.runner
		}),
		WithLogger(log.New(io.Discard)),
		WithPlatformOptions(platform.WithDistroProbe(debianProbe)),
	}
	s, err := New(req, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New(%+v): %v", req, err)
	}
	f.session = s
	return f
}
