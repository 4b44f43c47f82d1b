// Copyright 2024 The fastobuild Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fetch retrieves dependency sources: release tarballs over HTTP
// and git repositories.
package fetch

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/charmbracelet/log"
)

// Fetcher retrieves sources into a directory and reports where they landed.
type Fetcher interface {
	// Download fetches url into dir/<basename of url> and returns that path.
	Download(ctx context.Context, url, dir string) (string, error)

	// Extract unpacks the archive at file into dir, removes the archive and
	// returns the top-level directory of the extracted tree.
	Extract(ctx context.Context, file, dir string) (string, error)

	// Clone clones url into dir/<repository name>. A non-empty branch
	// clones only that branch; otherwise only the latest commit is fetched.
	// stripHistory removes .git after the clone.
	Clone(ctx context.Context, url, branch, dir string, stripHistory bool) (string, error)
}

type fetcher struct {
	client *http.Client
	logger *log.Logger
}

// Option configures the default Fetcher.
type Option func(*fetcher)

// WithHTTPClient sets the client used by Download.
func WithHTTPClient(c *http.Client) Option {
	return func(f *fetcher) {
		f.client = c
	}
}

// WithLogger sets the logger progress is reported to.
func WithLogger(l *log.Logger) Option {
	return func(f *fetcher) {
		f.logger = l
	}
}

// New creates a Fetcher that downloads over HTTP and clones with go-git.
func New(opts ...Option) Fetcher {
	f := &fetcher{client: http.DefaultClient, logger: log.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RepoName derives the directory a clone of url lands in:
// "https://github.com/fastogt/json-c.git" -> "json-c".
func RepoName(url string) string {
	base := path.Base(strings.TrimRight(url, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
