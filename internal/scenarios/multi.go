package scenarios

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"mongomark/internal/corpus"
)

// findManyAndEmptyCursor pre-loads 10k tweet documents and drains one
// full cursor per iteration.
type findManyAndEmptyCursor struct {
	base
}

func newFindManyAndEmptyCursor(deps Deps) *findManyAndEmptyCursor {
	return &findManyAndEmptyCursor{base{name: "FindManyAndEmptyCursor", deps: deps}}
}

func (s *findManyAndEmptyCursor) Setup(ctx context.Context) error {
	doc, err := s.deps.Corpus.Doc(corpus.TweetDoc)
	if err != nil {
		return err
	}
	// Ten batches of 1000, like the canonical workload.
	for i := 0; i < 10; i++ {
		if _, err := s.coll().InsertMany(ctx, copies(doc, 1000)); err != nil {
			return err
		}
	}
	return nil
}

func (s *findManyAndEmptyCursor) Task(ctx context.Context) error {
	cur, err := s.coll().Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		// Drain; documents are discarded.
	}
	return cur.Err()
}

// smallDocBulkInsert does one InsertMany of NumDocs small documents
// per iteration into a freshly recreated collection.
type smallDocBulkInsert struct {
	base
	docs []interface{}
}

func newSmallDocBulkInsert(deps Deps) *smallDocBulkInsert {
	return &smallDocBulkInsert{base: base{name: "SmallDocBulkInsert", deps: deps}}
}

func (s *smallDocBulkInsert) Before(ctx context.Context) error {
	if err := s.resetCorpus(ctx); err != nil {
		return err
	}
	doc, err := s.deps.Corpus.Doc(corpus.SmallDoc)
	if err != nil {
		return err
	}
	s.docs = copies(doc, s.deps.Cfg.NumDocs)
	return nil
}

func (s *smallDocBulkInsert) Task(ctx context.Context) error {
	_, err := s.coll().InsertMany(ctx, s.docs)
	return err
}

// largeDocBulkInsert does one InsertMany of 10 large documents per
// iteration.
type largeDocBulkInsert struct {
	base
	docs []interface{}
}

func newLargeDocBulkInsert(deps Deps) *largeDocBulkInsert {
	return &largeDocBulkInsert{base: base{name: "LargeDocBulkInsert", deps: deps}}
}

func (s *largeDocBulkInsert) Setup(ctx context.Context) error {
	doc, err := s.deps.Corpus.Doc(corpus.LargeDoc)
	if err != nil {
		return err
	}
	s.docs = copies(doc, 10)
	return nil
}

func (s *largeDocBulkInsert) Before(ctx context.Context) error {
	return s.resetCorpus(ctx)
}

func (s *largeDocBulkInsert) Task(ctx context.Context) error {
	_, err := s.coll().InsertMany(ctx, s.docs)
	return err
}
