package fetch

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

func quietFetcher() Fetcher {
	return New(WithLogger(log.New(io.Discard)))
}

type entry struct {
	name string
	body string
	dir  bool
}

func tarBytes(t *testing.T, entries []entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if e.dir {
			hdr = &tar.Header{Name: e.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if !e.dir {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func compress(t *testing.T, kind string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch kind {
	case "gz":
		w = gzip.NewWriter(&buf)
	case "xz":
		w, err = xz.NewWriter(&buf)
	case "zst":
		w, err = zstd.NewWriter(&buf)
	default:
		return data
	}
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

var projectEntries = []entry{
	{name: "openssl-1.1.1w/", dir: true},
	{name: "openssl-1.1.1w/config", body: "#!/bin/sh\n"},
	{name: "openssl-1.1.1w/crypto/aes.c", body: "int x;\n"},
}

func TestExtractTarFormats(t *testing.T) {
	for _, tt := range []struct{ ext, kind string }{
		{".tar.gz", "gz"},
		{".tgz", "gz"},
		{".tar.xz", "xz"},
		{".tar.zst", "zst"},
		{".tar", ""},
	} {
		t.Run(tt.ext, func(t *testing.T) {
			dir := t.TempDir()
			archive := filepath.Join(dir, "openssl-1.1.1w"+tt.ext)
			if err := os.WriteFile(archive, compress(t, tt.kind, tarBytes(t, projectEntries)), 0o644); err != nil {
				t.Fatal(err)
			}

			root, err := quietFetcher().Extract(context.Background(), archive, dir)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if want := filepath.Join(dir, "openssl-1.1.1w"); root != want {
				t.Errorf("root = %q, want %q", root, want)
			}
			data, err := os.ReadFile(filepath.Join(root, "crypto", "aes.c"))
			if err != nil || string(data) != "int x;\n" {
				t.Errorf("aes.c = %q, %v", data, err)
			}
			if _, err := os.Stat(archive); !os.IsNotExist(err) {
				t.Errorf("archive was not removed: %v", err)
			}
		})
	}
}

func TestExtractImplicitDirs(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "meson-1.3.0.tar.gz")
	data := tarBytes(t, []entry{{name: "meson-1.3.0/setup.py", body: "print()"}})
	if err := os.WriteFile(archive, compress(t, "gz", data), 0o644); err != nil {
		t.Fatal(err)
	}
	root, err := quietFetcher().Extract(context.Background(), archive, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if filepath.Base(root) != "meson-1.3.0" {
		t.Errorf("root = %q", root)
	}
}

func TestExtractNoCommonRoot(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "flat.tar.gz")
	data := tarBytes(t, []entry{{name: "a.c", body: "a"}, {name: "b/c.c", body: "c"}})
	if err := os.WriteFile(archive, compress(t, "gz", data), 0o644); err != nil {
		t.Fatal(err)
	}
	root, err := quietFetcher().Extract(context.Background(), archive, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if root != dir {
		t.Errorf("root = %q, want %q", root, dir)
	}
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "cmake-3.28.1.zip")
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("cmake-3.28.1/bootstrap")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "#!/bin/sh\n")
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archive, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	root, err := quietFetcher().Extract(context.Background(), archive, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "bootstrap")); err != nil {
		t.Errorf("bootstrap missing under %q: %v", root, err)
	}
}

func TestExtractRejectsEscapes(t *testing.T) {
	for _, name := range []string{"../evil", "a/../../evil", "/etc/evil"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			archive := filepath.Join(dir, "bad.tar.gz")
			data := tarBytes(t, []entry{{name: name, body: "x"}})
			if err := os.WriteFile(archive, compress(t, "gz", data), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := quietFetcher().Extract(context.Background(), archive, filepath.Join(dir, "out"))
			if !errors.Is(err, ErrUnsafePath) {
				t.Fatalf("Extract err = %v, want ErrUnsafePath", err)
			}
		})
	}
}

func TestExtractUnsupported(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "source.rar")
	os.WriteFile(archive, []byte("x"), 0o644)
	if _, err := quietFetcher().Extract(context.Background(), archive, dir); !errors.Is(err, ErrUnsupportedArchive) {
		t.Fatalf("err = %v, want ErrUnsupportedArchive", err)
	}
}

func TestDownload(t *testing.T) {
	payload := strings.Repeat("tarball", 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/source/openssl-1.1.1w.tar.gz" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(WithHTTPClient(srv.Client()), WithLogger(log.New(io.Discard)))
	got, err := f.Download(context.Background(), srv.URL+"/source/openssl-1.1.1w.tar.gz", dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if want := filepath.Join(dir, "openssl-1.1.1w.tar.gz"); got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
	data, err := os.ReadFile(got)
	if err != nil || string(data) != payload {
		t.Errorf("downloaded content mismatch: %v", err)
	}

	if _, err := f.Download(context.Background(), srv.URL+"/missing.tar.gz", dir); err == nil {
		t.Error("Download of a 404 succeeded")
	} else if !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want the status in the message", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.tar.gz")); !os.IsNotExist(err) {
		t.Error("a file was left behind for a failed download")
	}
}

func TestRepoName(t *testing.T) {
	tests := map[string]string{
		"https://github.com/fastogt/json-c":           "json-c",
		"https://github.com/fastogt/libcpuid.git":     "libcpuid",
		"https://github.com/fastogt/fastotv_protocol": "fastotv_protocol",
		"https://github.com/fastogt/common/":          "common",
	}
	for url, want := range tests {
		if got := RepoName(url); got != want {
			t.Errorf("RepoName(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestCloneRefusesNonEmptyDestination(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "snappy"), 0o755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "snappy", "CMakeLists.txt"), nil, 0o644)

	_, err := quietFetcher().Clone(context.Background(), "https://github.com/fastogt/snappy", "", dir, true)
	if err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Fatalf("Clone err = %v, want a non-empty destination error", err)
	}
}

func TestProgressWriter(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf)
	l.SetLevel(log.DebugLevel)
	p := &progressWriter{logger: l, name: "x", total: 100}
	for i := 0; i < 10; i++ {
		p.Write(make([]byte, 10))
	}
	if p.written != 100 {
		t.Fatalf("written = %d", p.written)
	}
	if n := strings.Count(buf.String(), "progress"); n != 10 {
		t.Errorf("logged %d progress lines, want 10", n)
	}
}
