package scenarios

import (
	"bytes"
	"context"
	"io"
	"os"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"mongomark/internal/corpus"
)

func (b *base) dropGridFS(ctx context.Context) error {
	for _, name := range []string{"fs.files", "fs.chunks"} {
		if err := b.db().Collection(name).Drop(ctx); err != nil {
			return err
		}
	}
	return nil
}

// gridFSUpload streams one ~50 MB payload into GridFS per iteration.
// The bucket collections are dropped in Before and primed with a tiny
// file so index creation never lands in the timed window; a fresh
// bucket is built each iteration because a bucket remembers which
// indexes it has already checked.
type gridFSUpload struct {
	base
	payload []byte
	bucket  *gridfs.Bucket
}

func newGridFSUpload(deps Deps) *gridFSUpload {
	return &gridFSUpload{base: base{name: "GridFSUpload", deps: deps}}
}

func (s *gridFSUpload) Setup(ctx context.Context) error {
	data, err := os.ReadFile(s.deps.Corpus.DocPath(corpus.GridFSLarge))
	if err != nil {
		return err
	}
	s.payload = data
	return nil
}

func (s *gridFSUpload) Before(ctx context.Context) error {
	if err := s.dropGridFS(ctx); err != nil {
		return err
	}

	primer, err := gridfs.NewBucket(s.db())
	if err != nil {
		return err
	}
	if _, err := primer.UploadFromStream("init", bytes.NewReader([]byte{'x'})); err != nil {
		return err
	}

	s.bucket, err = gridfs.NewBucket(s.db())
	return err
}

func (s *gridFSUpload) Task(ctx context.Context) error {
	_, err := s.bucket.UploadFromStream("gridfstest", bytes.NewReader(s.payload))
	return err
}

// gridFSDownload uploads the large payload once, then streams it back
// out per iteration.
type gridFSDownload struct {
	base
	fileID primitive.ObjectID
	bucket *gridfs.Bucket
}

func newGridFSDownload(deps Deps) *gridFSDownload {
	return &gridFSDownload{base: base{name: "GridFSDownload", deps: deps}}
}

func (s *gridFSDownload) Setup(ctx context.Context) error {
	f, err := os.Open(s.deps.Corpus.DocPath(corpus.GridFSLarge))
	if err != nil {
		return err
	}
	defer f.Close()

	bucket, err := gridfs.NewBucket(s.db())
	if err != nil {
		return err
	}
	id, err := bucket.UploadFromStream("gridfstest", f)
	if err != nil {
		return err
	}
	s.fileID = id
	s.bucket = bucket
	return nil
}

func (s *gridFSDownload) Task(ctx context.Context) error {
	_, err := s.bucket.DownloadToStream(s.fileID, io.Discard)
	return err
}
