package wordnet

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/heartmarshall/myenglish-dictdb/internal/config"
	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// corpusFiles returns the testdata corpus as archive members nested in a
// release directory, plus a non-JSON file that must be skipped.
func corpusFiles(t *testing.T) map[string][]byte {
	t.Helper()
	files := make(map[string][]byte)
	for _, name := range []string{"noun.act.json", "verb.motion.json", "adj.all.json", "adv.all.json"} {
		data, err := os.ReadFile(testdataPath(t, filepath.Join("oewn", name)))
		if err != nil {
			t.Fatal(err)
		}
		files["english-wordnet-2025/json/"+name] = data
	}
	files["english-wordnet-2025/LICENSE.md"] = []byte("CC-BY 4.0")
	return files
}

func buildZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func buildTarGz(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for name, data := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(data)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func corpusConfig(dir string) config.CorpusConfig {
	return config.CorpusConfig{
		Dir:              dir,
		UserAgent:        "myenglish-dictdb-test",
		DownloadTimeout:  5 * time.Second,
		MaxDownloadBytes: 1 << 20,
	}
}

func TestEnsureCorpus_AlreadyPresent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := corpusConfig(testdataPath(t, "oewn"))
	cfg.ReleaseAPI = srv.URL

	if err := EnsureCorpus(context.Background(), cfg, testLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no HTTP requests, got %d", hits.Load())
	}
}

func TestEnsureCorpus_LatestReleaseZip(t *testing.T) {
	archive := buildZip(t, corpusFiles(t))

	var gotUA string
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/repos/globalwordnet/english-wordnet/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprintf(w, `{"tag_name":"2025-edition","assets":[
			{"name":"english-wordnet-2025.xml.gz","browser_download_url":"%[1]s/dl/xml.gz"},
			{"name":"english-wordnet-2025-json.zip","browser_download_url":"%[1]s/dl/json.zip"}
		]}`, srvURL)
	})
	mux.HandleFunc("/dl/json.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	dir := filepath.Join(t.TempDir(), "wordnet")
	cfg := corpusConfig(dir)
	cfg.ReleaseAPI = srv.URL + "/repos/globalwordnet/english-wordnet/releases/latest"

	if err := EnsureCorpus(context.Background(), cfg, testLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUA != "myenglish-dictdb-test" {
		t.Errorf("User-Agent = %q", gotUA)
	}

	corpus, err := Load(dir)
	if err != nil {
		t.Fatalf("load extracted corpus: %v", err)
	}
	if corpus.Stats.Synsets != 6 {
		t.Errorf("synsets = %d, want 6", corpus.Stats.Synsets)
	}
	if _, err := os.Stat(filepath.Join(dir, "LICENSE.md")); !os.IsNotExist(err) {
		t.Error("non-JSON members must not be extracted")
	}
	if _, err := os.Stat(filepath.Join(dir, "verb.motion.json")); err != nil {
		t.Errorf("nested members should be flattened into the corpus dir: %v", err)
	}
}

func TestEnsureCorpus_ExplicitURLTarGz(t *testing.T) {
	archive := buildTarGz(t, corpusFiles(t))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/english-wordnet-2025-json.tar.gz" {
			http.NotFound(w, r)
			return
		}
		w.Write(archive)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "wordnet")
	cfg := corpusConfig(dir)
	cfg.URL = srv.URL + "/english-wordnet-2025-json.tar.gz"

	if err := EnsureCorpus(context.Background(), cfg, testLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := HasCorpus(dir)
	if err != nil || !ok {
		t.Fatalf("expected corpus after extraction, got %v, %v", ok, err)
	}
}

func TestEnsureCorpus_Failures(t *testing.T) {
	zipNoSynsets := buildZip(t, map[string][]byte{"readme.json": []byte("{}")})

	mux := http.NewServeMux()
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not an archive"))
	})
	mux.HandleFunc("/empty.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(zipNoSynsets)
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 2048))
	})
	mux.HandleFunc("/release-no-json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"v1","assets":[{"name":"wn.xml.gz","browser_download_url":"x"}]}`))
	})
	mux.HandleFunc("/release-broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tests := []struct {
		name   string
		mutate func(c *config.CorpusConfig)
	}{
		{"download 404", func(c *config.CorpusConfig) { c.URL = srv.URL + "/missing" }},
		{"not an archive", func(c *config.CorpusConfig) { c.URL = srv.URL + "/plain" }},
		{"archive without synsets", func(c *config.CorpusConfig) { c.URL = srv.URL + "/empty.zip" }},
		{"over size limit", func(c *config.CorpusConfig) { c.URL = srv.URL + "/big"; c.MaxDownloadBytes = 1024 }},
		{"release without json asset", func(c *config.CorpusConfig) { c.ReleaseAPI = srv.URL + "/release-no-json" }},
		{"release api error", func(c *config.CorpusConfig) { c.ReleaseAPI = srv.URL + "/release-broken" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := corpusConfig(filepath.Join(t.TempDir(), "wordnet"))
			tt.mutate(&cfg)

			err := EnsureCorpus(context.Background(), cfg, testLogger())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrCorpusUnavailable) {
				t.Fatalf("expected ErrCorpusUnavailable, got %v", err)
			}
		})
	}
}

func TestIsJSONArchive(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"english-wordnet-2025-json.zip", true},
		{"english-wordnet-2025-json.tar.gz", true},
		{"english-wordnet-2025-JSON.tgz", true},
		{"english-wordnet-2025.xml.gz", false},
		{"english-wordnet-2025-json.7z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isJSONArchive(tt.name); got != tt.want {
				t.Errorf("isJSONArchive(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
