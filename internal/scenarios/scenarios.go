// Package scenarios implements the standard driver performance
// benchmark workloads against a live MongoDB deployment. Each scenario
// satisfies harness.Scenario; scenario-level provisioning lives behind
// the optional Setupper interface so the driver loop, not the harness
// core, owns it.
package scenarios

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"mongomark/internal/corpus"
	"mongomark/internal/harness"
)

// DBName is the scratch database every scenario works in. The driver
// loop drops it before and after each scenario.
const DBName = "perftest"

const collName = "corpus"

// Setupper is the optional one-time provisioning hook, run once before
// the iteration loop starts. Per-iteration setup belongs in Before.
type Setupper interface {
	Setup(ctx context.Context) error
}

// Deps is what every scenario needs: a shared client, the on-disk
// corpus, and the iteration budget (for NumDocs and ChunkSize).
type Deps struct {
	Client *mongo.Client
	Corpus *corpus.Store
	Cfg    harness.Config
}

// All returns the full suite in its canonical reporting order.
func All(deps Deps) []harness.Scenario {
	return []harness.Scenario{
		// Single-doc.
		newRunCommand(deps),
		newFindOneByID(deps),
		newSmallDocInsertOne(deps),
		newLargeDocInsertOne(deps),
		// Multi-doc.
		newFindManyAndEmptyCursor(deps),
		newSmallDocBulkInsert(deps),
		newLargeDocBulkInsert(deps),
		// GridFS.
		newGridFSUpload(deps),
		newGridFSDownload(deps),
		// Parallel.
		newJSONMultiImport(deps),
		newJSONMultiExport(deps),
		newGridFSMultiUpload(deps),
		newGridFSMultiDownload(deps),
	}
}

// base carries the shared plumbing; scenarios embed it.
type base struct {
	name string
	deps Deps
}

func (b *base) Name() string { return b.name }

// Before is a no-op unless a scenario overrides it.
func (b *base) Before(ctx context.Context) error { return nil }

func (b *base) db() *mongo.Database {
	return b.deps.Client.Database(DBName)
}

func (b *base) coll() *mongo.Collection {
	return b.db().Collection(collName)
}

// resetCorpus drops and explicitly recreates the corpus collection so
// the first timed insert does not pay collection creation.
func (b *base) resetCorpus(ctx context.Context) error {
	if err := b.coll().Drop(ctx); err != nil {
		return err
	}
	return b.db().RunCommand(ctx, bson.D{{Key: "create", Value: collName}}).Err()
}

// copies builds an insert batch of n aliases of doc. The driver does
// not mutate the in-memory document on insert, so aliasing is safe.
func copies(doc bson.D, n int) []interface{} {
	docs := make([]interface{}, n)
	for i := range docs {
		docs[i] = doc
	}
	return docs
}
