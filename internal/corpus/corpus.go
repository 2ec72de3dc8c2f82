// Package corpus provisions the driver performance test datasets: two
// tarballs of JSON documents and binary payloads that the scenarios
// feed to the server. Contents are treated as opaque blobs; nothing
// here validates them beyond the decode the driver needs.
package corpus

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"mongomark/internal/logger"
)

const baseURL = "https://github.com/ajdavis/driver-performance-test-data/raw/add-closing-brace/"

// Dataset directory names; each <name>.tgz expands to a directory
// called <name> full of data files.
var datasets = []string{"single_and_multi_document", "parallel"}

// Well-known corpus files.
const (
	TweetDoc    = "tweet.json"
	SmallDoc    = "small_doc.json"
	LargeDoc    = "large_doc.json"
	GridFSLarge = "gridfs_large.bin"

	LDJSONMultiDir = "ldjson_multi"
	GridFSMultiDir = "gridfs_multi"
)

// Store locates and lazily downloads the test datasets under one
// directory.
type Store struct {
	dir    string
	log    *logger.Logger
	client *http.Client
}

func NewStore(dir string, log *logger.Logger) *Store {
	return &Store{
		dir: dir,
		log: log,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Dir returns the data directory root.
func (s *Store) Dir() string {
	return s.dir
}

// Ensure downloads and extracts any dataset whose directory is
// missing. The data directory itself must already exist.
func (s *Store) Ensure(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("data directory %q: %w", s.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %q is not a directory", s.dir)
	}

	for _, name := range datasets {
		target := filepath.Join(s.dir, name)
		if _, err := os.Stat(target); err == nil {
			continue
		}
		s.log.WithField("dataset", name).Info("downloading test data")
		if err := s.fetch(ctx, name); err != nil {
			return fmt.Errorf("dataset %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) fetch(ctx context.Context, name string) error {
	url := baseURL + name + ".tgz"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return extractTarGz(resp.Body, s.dir)
}

// extractTarGz expands a .tgz stream under dir, refusing entries that
// would escape it.
func extractTarGz(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dir, filepath.Clean(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("tar entry %q escapes %q", hdr.Name, dir)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
	}
}

// DocPath returns the path of a file in the single/multi-document
// dataset.
func (s *Store) DocPath(name string) string {
	return filepath.Join(s.dir, "single_and_multi_document", name)
}

// Doc loads one extended-JSON document from the single/multi-document
// dataset.
func (s *Store) Doc(name string) (bson.D, error) {
	data, err := os.ReadFile(s.DocPath(name))
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return doc, nil
}

// ParallelFiles lists the files of a parallel sub-dataset
// (ldjson_multi or gridfs_multi), sorted by name.
func (s *Store) ParallelFiles(sub string) ([]string, error) {
	dir := filepath.Join(s.dir, "parallel", sub)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// LineDocs parses one line-delimited JSON file into documents ready
// for an insert.
func LineDocs(path string) ([]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []interface{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var doc bson.D
		if err := bson.UnmarshalExtJSON([]byte(line), false, &doc); err != nil {
			return nil, fmt.Errorf("decode line of %s: %w", filepath.Base(path), err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
