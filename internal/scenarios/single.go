package scenarios

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"mongomark/internal/corpus"
)

// runCommand measures command round-trip overhead: NumDocs hello
// commands against the admin database per iteration.
type runCommand struct {
	base
}

func newRunCommand(deps Deps) *runCommand {
	return &runCommand{base{name: "RunCommand", deps: deps}}
}

func (s *runCommand) Task(ctx context.Context) error {
	admin := s.deps.Client.Database("admin")
	cmd := bson.D{{Key: "hello", Value: 1}}
	for i := 0; i < s.deps.Cfg.NumDocs; i++ {
		if err := admin.RunCommand(ctx, cmd).Err(); err != nil {
			return err
		}
	}
	return nil
}

// findOneByID pre-inserts NumDocs tweet documents, then fetches each
// one by _id per iteration.
type findOneByID struct {
	base
	ids []interface{}
}

func newFindOneByID(deps Deps) *findOneByID {
	return &findOneByID{base: base{name: "FindOneByID", deps: deps}}
}

func (s *findOneByID) Setup(ctx context.Context) error {
	doc, err := s.deps.Corpus.Doc(corpus.TweetDoc)
	if err != nil {
		return err
	}
	res, err := s.coll().InsertMany(ctx, copies(doc, s.deps.Cfg.NumDocs))
	if err != nil {
		return err
	}
	s.ids = res.InsertedIDs
	return nil
}

func (s *findOneByID) Task(ctx context.Context) error {
	coll := s.coll()
	for _, id := range s.ids {
		var doc bson.Raw
		if err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
			return err
		}
	}
	return nil
}

// smallDocInsertOne recreates the collection each iteration and inserts
// NumDocs small documents one at a time.
type smallDocInsertOne struct {
	base
	docs []interface{}
}

func newSmallDocInsertOne(deps Deps) *smallDocInsertOne {
	return &smallDocInsertOne{base: base{name: "SmallDocInsertOne", deps: deps}}
}

func (s *smallDocInsertOne) Before(ctx context.Context) error {
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

func (s *smallDocInsertOne) Task(ctx context.Context) error {
	coll := s.coll()
	for _, doc := range s.docs {
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// largeDocInsertOne inserts 10 multi-megabyte documents one at a time.
type largeDocInsertOne struct {
	base
	docs []interface{}
}

func newLargeDocInsertOne(deps Deps) *largeDocInsertOne {
	return &largeDocInsertOne{base: base{name: "LargeDocInsertOne", deps: deps}}
}

func (s *largeDocInsertOne) Before(ctx context.Context) error {
	if err := s.resetCorpus(ctx); err != nil {
		return err
	}
	doc, err := s.deps.Corpus.Doc(corpus.LargeDoc)
	if err != nil {
		return err
	}
	s.docs = copies(doc, 10)
	return nil
}

func (s *largeDocInsertOne) Task(ctx context.Context) error {
	coll := s.coll()
	for _, doc := range s.docs {
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
