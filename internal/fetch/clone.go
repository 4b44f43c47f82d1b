// Copyright 2024 The fastobuild Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

func (f *fetcher) Clone(ctx context.Context, url, branch, dir string, stripHistory bool) (string, error) {
	name := RepoName(url)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("clone %s: cannot derive a directory name", url)
	}
	dst := filepath.Join(dir, name)
	if entries, err := os.ReadDir(dst); err == nil && len(entries) > 0 {
		return "", fmt.Errorf("clone %s: destination %s is not empty", url, dst)
	}

	opts := &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	} else {
		opts.Depth = 1
	}

	f.logger.Info("cloning", "url", url, "branch", branch, "dir", dst)
	if _, err := git.PlainCloneContext(ctx, dst, false, opts); err != nil {
		return "", fmt.Errorf("clone %s: %w", url, err)
	}
	if stripHistory {
		if err := os.RemoveAll(filepath.Join(dst, ".git")); err != nil {
			return "", err
		}
	}
	return dst, nil
}
