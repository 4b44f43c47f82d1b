// Copyright 2024 The fastobuild Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fetch

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ErrUnsupportedArchive is returned for files Extract cannot unpack.
var ErrUnsupportedArchive = errors.New("unsupported archive format")

// ErrUnsafePath is returned when an archive entry would land outside the
// destination directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

type format int

const (
	formatUnknown format = iota
	formatTarGz
	formatTarXz
	formatTarBz2
	formatTarZst
	formatTar
	formatZip
)

func detectFormat(name string) format {
	name = strings.ToLower(name)
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return formatTarGz
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return formatTarXz
	case strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tbz2"):
		return formatTarBz2
	case strings.HasSuffix(name, ".tar.zst"):
		return formatTarZst
	case strings.HasSuffix(name, ".tar"):
		return formatTar
	case strings.HasSuffix(name, ".zip"):
		return formatZip
	}
	return formatUnknown
}

func (f *fetcher) Extract(ctx context.Context, file, dir string) (string, error) {
	fm := detectFormat(file)
	if fm == formatUnknown {
		return "", fmt.Errorf("extract %s: %w", file, ErrUnsupportedArchive)
	}
	f.logger.Info("extracting", "file", file, "dir", dir)

	var (
		tops []string
		err  error
	)
	if fm == formatZip {
		tops, err = extractZip(ctx, file, dir)
	} else {
		tops, err = extractTarFile(ctx, fm, file, dir)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", file, err)
	}
	if err := os.Remove(file); err != nil {
		return "", err
	}
	return commonRoot(dir, tops), nil
}

func extractTarFile(ctx context.Context, fm format, file, dir string) ([]string, error) {
	fp, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	var r io.Reader
	switch fm {
	case formatTarGz:
		zr, err := gzip.NewReader(fp)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case formatTarXz:
		xr, err := xz.NewReader(fp)
		if err != nil {
			return nil, err
		}
		r = xr
	case formatTarBz2:
		r = bzip2.NewReader(fp)
	case formatTarZst:
		zr, err := zstd.NewReader(fp)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	default:
		r = fp
	}
	return extractTar(ctx, r, dir)
}

func extractTar(ctx context.Context, r io.Reader, dir string) ([]string, error) {
	var tops topLevel
	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			return tops.names, nil
		}
		if err != nil {
			return nil, err
		}
		// pax global headers carry no file
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}
		target, rel, err := safeJoin(dir, hdr.Name)
		if err != nil {
			return nil, err
		}
		if rel == "." {
			continue
		}
		tops.add(rel)

		mode := hdr.FileInfo().Mode().Perm()
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, mode|0o700); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, mode); err != nil {
				return nil, err
			}
		case tar.TypeSymlink:
			if err := checkLink(dir, target, hdr.Linkname); err != nil {
				return nil, err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return nil, err
			}
		case tar.TypeLink:
			src, _, err := safeJoin(dir, hdr.Linkname)
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, err
			}
			if err := os.Link(src, target); err != nil {
				return nil, err
			}
		}
	}
}

func extractZip(ctx context.Context, file, dir string) ([]string, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var tops topLevel
	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target, rel, err := safeJoin(dir, zf.Name)
		if err != nil {
			return nil, err
		}
		if rel == "." {
			continue
		}
		tops.add(rel)

		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, err
			}
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, err
		}
		mode := zf.Mode().Perm()
		if mode == 0 {
			mode = 0o644
		}
		err = writeFile(target, rc, mode)
		rc.Close()
		if err != nil {
			return nil, err
		}
	}
	return tops.names, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// safeJoin resolves an archive entry name under dir. It returns the
// destination path and the cleaned slash-separated relative name.
func safeJoin(dir, name string) (string, string, error) {
	rel := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" ||
		rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Join(dir, rel), filepath.ToSlash(rel), nil
}

func checkLink(dir, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrUnsafePath, target, linkname)
	}
	resolved := filepath.Join(filepath.Dir(target), linkname)
	rel, err := filepath.Rel(dir, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrUnsafePath, target, linkname)
	}
	return nil
}

// topLevel records the distinct first path components seen.
type topLevel struct {
	names []string
	seen  map[string]bool
}

func (t *topLevel) add(rel string) {
	first, _, _ := strings.Cut(rel, "/")
	if t.seen == nil {
		t.seen = make(map[string]bool)
	}
	if !t.seen[first] {
		t.seen[first] = true
		t.names = append(t.names, first)
	}
}

// commonRoot returns dir/<name> when every entry lives under one top-level
// directory, and dir itself otherwise.
func commonRoot(dir string, tops []string) string {
	if len(tops) != 1 {
		return dir
	}
	root := filepath.Join(dir, tops[0])
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return dir
	}
	return root
}
