// Copyright 2024 The fastobuild Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
)

func (f *fetcher) Download(ctx context.Context, rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("download %s: no file name in url", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", rawURL, resp.Status)
	}

	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	f.logger.Info("downloading", "url", rawURL, "size", resp.ContentLength)
	pw := &progressWriter{logger: f.logger, name: name, total: resp.ContentLength}
	if _, err := io.Copy(out, io.TeeReader(resp.Body, pw)); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	f.logger.Info("downloaded", "file", dst, "bytes", pw.written)
	return dst, nil
}

const progressStep = 8 << 20

// progressWriter logs every 10% of a download, or every progressStep bytes
// when the size is unknown.
type progressWriter struct {
	logger  *log.Logger
	name    string
	total   int64
	written int64
	next    int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.next == 0 {
		p.next = p.step()
	}
	if p.written >= p.next {
		if p.total > 0 {
			p.logger.Debug("progress", "file", p.name, "percent", p.written*100/p.total)
		} else {
			p.logger.Debug("progress", "file", p.name, "bytes", p.written)
		}
		for p.next <= p.written {
			p.next += p.step()
		}
	}
	return len(b), nil
}

func (p *progressWriter) step() int64 {
	if p.total > 0 {
		return max(p.total/10, 1)
	}
	return progressStep
}
