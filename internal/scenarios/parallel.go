package scenarios

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"mongomark/internal/corpus"
	"mongomark/internal/harness"
)

// parallelFiles lists a parallel sub-dataset, truncated to 10 files in
// fast mode like the canonical suite.
func (b *base) parallelFiles(sub string) ([]string, error) {
	files, err := b.deps.Corpus.ParallelFiles(sub)
	if err != nil {
		return nil, err
	}
	if b.deps.Cfg.Fast && len(files) > 10 {
		files = files[:10]
	}
	return files, nil
}

func importFileUnit(coll *mongo.Collection, path string, withFileField bool) harness.WorkUnit {
	return func(ctx context.Context) error {
		docs, err := corpus.LineDocs(path)
		if err != nil {
			return err
		}
		if withFileField {
			for i, d := range docs {
				docs[i] = append(d.(bson.D), bson.E{Key: "file", Value: path})
			}
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		return nil
	}
}

// jsonMultiImport imports ~100 line-delimited JSON files, one insert
// per file, a chunk of files at a time to keep memory bounded.
type jsonMultiImport struct {
	base
	files []string
}

func newJSONMultiImport(deps Deps) *jsonMultiImport {
	return &jsonMultiImport{base: base{name: "JSONMultiImport", deps: deps}}
}

func (s *jsonMultiImport) Setup(ctx context.Context) error {
	files, err := s.parallelFiles(corpus.LDJSONMultiDir)
	if err != nil {
		return err
	}
	s.files = files
	return nil
}

func (s *jsonMultiImport) Before(ctx context.Context) error {
	return s.resetCorpus(ctx)
}

func (s *jsonMultiImport) Task(ctx context.Context) error {
	units := make([]harness.WorkUnit, len(s.files))
	for i, f := range s.files {
		units[i] = importFileUnit(s.coll(), f, false)
	}
	return harness.RunChunked(ctx, units, s.deps.Cfg.ChunkSize)
}

// jsonMultiExport pre-imports the same files tagged with their source
// path, then queries each file's documents back out to a scratch file,
// chunked the same way.
type jsonMultiExport struct {
	base
	files []string
}

func newJSONMultiExport(deps Deps) *jsonMultiExport {
	return &jsonMultiExport{base: base{name: "JSONMultiExport", deps: deps}}
}

func (s *jsonMultiExport) Setup(ctx context.Context) error {
	files, err := s.parallelFiles(corpus.LDJSONMultiDir)
	if err != nil {
		return err
	}
	s.files = files

	_, err = s.coll().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "file", Value: 1}},
	})
	if err != nil {
		return err
	}

	units := make([]harness.WorkUnit, len(files))
	for i, f := range files {
		units[i] = importFileUnit(s.coll(), f, true)
	}
	return harness.RunChunked(ctx, units, s.deps.Cfg.ChunkSize)
}

func (s *jsonMultiExport) exportFileUnit(path string) harness.WorkUnit {
	return func(ctx context.Context) error {
		cur, err := s.coll().Find(ctx, bson.D{{Key: "file", Value: path}})
		if err != nil {
			return err
		}
		defer cur.Close(ctx)

		tmp, err := os.CreateTemp("", "mongomark-export-*")
		if err != nil {
			return err
		}
		defer os.Remove(tmp.Name())
		defer tmp.Close()

		for cur.Next(ctx) {
			if _, err := tmp.Write(append(cur.Current, '\n')); err != nil {
				return err
			}
		}
		return cur.Err()
	}
}

func (s *jsonMultiExport) Task(ctx context.Context) error {
	units := make([]harness.WorkUnit, len(s.files))
	for i, f := range s.files {
		units[i] = s.exportFileUnit(f)
	}
	return harness.RunChunked(ctx, units, s.deps.Cfg.ChunkSize)
}

// gridFSMultiUpload streams ~50 binary files into GridFS, chunked to
// bound concurrent upload streams.
type gridFSMultiUpload struct {
	base
	files []string
}

func newGridFSMultiUpload(deps Deps) *gridFSMultiUpload {
	return &gridFSMultiUpload{base: base{name: "GridFSMultiFileUpload", deps: deps}}
}

func (s *gridFSMultiUpload) Setup(ctx context.Context) error {
	files, err := s.parallelFiles(corpus.GridFSMultiDir)
	if err != nil {
		return err
	}
	s.files = files
	return nil
}

func (s *gridFSMultiUpload) Before(ctx context.Context) error {
	return s.dropGridFS(ctx)
}

// uploadUnit builds a bucket per unit: gridfs.Bucket pumps every
// upload source through one bucket-level read buffer, so units in the
// same chunk must never share a bucket.
func (s *gridFSMultiUpload) uploadUnit(path string) harness.WorkUnit {
	return func(ctx context.Context) error {
		bucket, err := gridfs.NewBucket(s.db())
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = bucket.UploadFromStream(path, f)
		return err
	}
}

func (s *gridFSMultiUpload) Task(ctx context.Context) error {
	units := make([]harness.WorkUnit, len(s.files))
	for i, f := range s.files {
		units[i] = s.uploadUnit(f)
	}
	return harness.RunChunked(ctx, units, s.deps.Cfg.ChunkSize)
}

// gridFSMultiDownload uploads the binary files once, then streams each
// one's latest revision back out to a scratch file per iteration.
type gridFSMultiDownload struct {
	base
	files  []string
	bucket *gridfs.Bucket
}

func newGridFSMultiDownload(deps Deps) *gridFSMultiDownload {
	return &gridFSMultiDownload{base: base{name: "GridFSMultiFileDownload", deps: deps}}
}

func (s *gridFSMultiDownload) Setup(ctx context.Context) error {
	files, err := s.parallelFiles(corpus.GridFSMultiDir)
	if err != nil {
		return err
	}
	s.files = files

	bucket, err := gridfs.NewBucket(s.db())
	if err != nil {
		return err
	}
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = bucket.UploadFromStream(path, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	s.bucket = bucket
	return nil
}

func (s *gridFSMultiDownload) downloadUnit(path string) harness.WorkUnit {
	return func(ctx context.Context) error {
		tmp, err := os.CreateTemp("", "mongomark-gridfs-*")
		if err != nil {
			return err
		}
		defer os.Remove(tmp.Name())
		defer tmp.Close()

		_, err = s.bucket.DownloadToStreamByName(path, tmp)
		return err
	}
}

func (s *gridFSMultiDownload) Task(ctx context.Context) error {
	units := make([]harness.WorkUnit, len(s.files))
	for i, f := range s.files {
		units[i] = s.downloadUnit(f)
	}
	return harness.RunChunked(ctx, units, s.deps.Cfg.ChunkSize)
}
