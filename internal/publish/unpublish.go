package publish

import (
	"context"
	"time"

	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
	"git.home.luguber.info/inful/pagepublisher/internal/metrics"
	"git.home.luguber.info/inful/pagepublisher/internal/queue"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

// Unpublish removes the artifact at path (or the stored page's path when
// path is empty) and queues a search-index removal for indexable pages.
// Deleting an artifact that does not exist succeeds.
func (p *Publisher) Unpublish(ctx context.Context, env, id, docPath string) *Result {
	start := time.Now()
	res := &Result{}
	target, err := p.targets.Resolve(env)
	if err != nil {
		return res.Fail(err)
	}
	logger := p.logger.With(logfields.Target(env), logfields.DocumentID(id))

	indexable := false
	doc, err := p.repo.Get(ctx, id)
	switch {
	case err == nil:
		indexable = doc.SearchIndexable
		if docPath == "" {
			docPath = doc.Path
		}
	case store.IsNotFound(err):
		logger.Warn("Unpublishing document that is not in the store")
		res.Logf("%s: warning: document not found in store", id)
	default:
		return res.Fail(derrors.StoreError("load document").WithCause(err).Fatal().WithContext("document_id", id).Build())
	}
	if docPath == "" {
		return res.Fail(derrors.ValidationError("path is required to unpublish a document that is not stored").WithContext("document_id", id).Build())
	}

	key := ArtifactKey(docPath)
	if err := p.blobs.Delete(ctx, target.Bucket, key); err != nil {
		return res.Fail(derrors.BlobError("delete artifact").WithCause(err).
			WithContext("document_id", id).WithContext("key", key).Build())
	}
	res.Logf("%s: removed %s/%s", id, target.Bucket, key)
	p.recorder.IncDocumentOutcome(metrics.OutcomeUnpublished)

	if indexable && p.queue != nil {
		if serr := p.enqueue(ctx, queue.ActionRemove, id); serr != nil {
			p.recorder.IncSideEffectFailure(string(StageIndex))
			logger.Warn("Search index removal failed", logfields.Error(serr.Err))
			res.Logf("%s: warning: search index removal failed: %s", id, derrors.Describe(serr.Err))
		}
	}

	logger.Info("Unpublished document", logfields.Bucket(target.Bucket), logfields.Key(key), logfields.Duration(time.Since(start)))
	res.Success = true
	return res
}
