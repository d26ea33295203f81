package wordnet

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/heartmarshall/myenglish-dictdb/internal/config"
	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
)

var (
	zipMagic  = []byte("PK\x03\x04")
	gzipMagic = []byte{0x1f, 0x8b}
)

// release is the subset of the GitHub "latest release" payload we need.
type release struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
	} `json:"assets"`
}

// EnsureCorpus makes sure cfg.Dir holds the OEWN JSON synset files.
// When they are missing the release archive is downloaded once (cfg.URL, or
// the JSON asset of the latest GitHub release) and its *.json members are
// extracted flat into cfg.Dir. There is no retry: any failure is returned
// wrapped in domain.ErrCorpusUnavailable.
func EnsureCorpus(ctx context.Context, cfg config.CorpusConfig, log *slog.Logger) error {
	ok, err := HasCorpus(cfg.Dir)
	if err != nil {
		return fmt.Errorf("%w: inspect %s: %w", domain.ErrCorpusUnavailable, cfg.Dir, err)
	}
	if ok {
		log.DebugContext(ctx, "corpus present", slog.String("dir", cfg.Dir))
		return nil
	}

	client := &http.Client{Timeout: cfg.DownloadTimeout}

	url := cfg.URL
	if url == "" {
		log.InfoContext(ctx, "corpus not found, looking up latest release",
			slog.String("dir", cfg.Dir),
			slog.String("api", cfg.ReleaseAPI),
		)
		url, err = latestReleaseAssetURL(ctx, client, cfg)
		if err != nil {
			return fmt.Errorf("%w: find latest release: %w", domain.ErrCorpusUnavailable, err)
		}
	}

	log.InfoContext(ctx, "downloading corpus", slog.String("url", url))

	n, err := downloadAndExtract(ctx, client, cfg, url)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCorpusUnavailable, err)
	}

	log.InfoContext(ctx, "corpus extracted", slog.String("dir", cfg.Dir), slog.Int("files", n))
	return nil
}

func latestReleaseAssetURL(ctx context.Context, client *http.Client, cfg config.CorpusConfig) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.ReleaseAPI, nil)
	if err != nil {
		return "", err
	}
	// GitHub API requires a User-Agent.
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github api returned status: %s", resp.Status)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return "", fmt.Errorf("decode release: %w", err)
	}

	for _, asset := range rel.Assets {
		if !isJSONArchive(asset.Name) {
			continue
		}
		if asset.Size > cfg.MaxDownloadBytes {
			return "", fmt.Errorf("asset %s is %d bytes, limit is %d", asset.Name, asset.Size, cfg.MaxDownloadBytes)
		}
		return asset.BrowserDownloadURL, nil
	}

	return "", fmt.Errorf("no JSON archive among %d assets of release %q", len(rel.Assets), rel.TagName)
}

// isJSONArchive matches release assets like english-wordnet-2024-json.zip.
func isJSONArchive(name string) bool {
	name = strings.ToLower(name)
	if !strings.Contains(name, "json") {
		return false
	}
	return strings.HasSuffix(name, ".zip") || strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz")
}

// downloadAndExtract spools the archive to a temp file (zip needs random
// access), then extracts it. Returns the number of extracted files.
func downloadAndExtract(ctx context.Context, client *http.Client, cfg config.CorpusConfig, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download failed: %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "wordnet-*.archive")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	// One extra byte detects archives over the limit.
	size, err := io.Copy(tmp, io.LimitReader(resp.Body, cfg.MaxDownloadBytes+1))
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	if size > cfg.MaxDownloadBytes {
		return 0, fmt.Errorf("archive exceeds %d bytes", cfg.MaxDownloadBytes)
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("create corpus dir: %w", err)
	}

	return extractArchive(tmp, size, cfg.Dir)
}

// extractArchive detects the archive format from its magic bytes.
func extractArchive(f *os.File, size int64, dest string) (int, error) {
	head := make([]byte, 4)
	if _, err := f.ReadAt(head, 0); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read archive header: %w", err)
	}

	var (
		n   int
		err error
	)
	switch {
	case bytes.HasPrefix(head, zipMagic):
		n, err = extractZip(f, size, dest)
	case bytes.HasPrefix(head, gzipMagic):
		n, err = extractTarGz(io.NewSectionReader(f, 0, size), dest)
	default:
		return 0, fmt.Errorf("unsupported archive format")
	}
	if err != nil {
		return n, err
	}

	ok, err := HasCorpus(dest)
	if err != nil {
		return n, err
	}
	if !ok {
		return n, fmt.Errorf("archive contains no synset files")
	}
	return n, nil
}

func extractZip(r io.ReaderAt, size int64, dest string) (int, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return 0, fmt.Errorf("open zip: %w", err)
	}

	n := 0
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !isJSONMember(zf.Name) {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return n, fmt.Errorf("open %s: %w", zf.Name, err)
		}
		err = writeMember(dest, zf.Name, rc)
		rc.Close()
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func extractTarGz(r io.Reader, dest string) (int, error) {
	gz, err := gzip.NewReader(bufio.NewReader(r))
	if err != nil {
		return 0, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	n := 0
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, fmt.Errorf("error reading tar archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !isJSONMember(header.Name) {
			continue
		}
		if err := writeMember(dest, header.Name, tr); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func isJSONMember(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".json")
}

// writeMember flattens the member path to its base name, which also keeps
// "../" entries from escaping dest.
func writeMember(dest, name string, r io.Reader) error {
	path := filepath.Join(dest, filepath.Base(filepath.FromSlash(name)))

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}
