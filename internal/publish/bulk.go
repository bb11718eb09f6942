package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/pagepublisher/internal/blob"
	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
	"git.home.luguber.info/inful/pagepublisher/internal/metrics"
	"git.home.luguber.info/inful/pagepublisher/internal/navtree"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

// bulkItem is one slot of the run. Either doc is set or err explains why
// the document could not be loaded.
type bulkItem struct {
	id  string
	doc *content.Document
	err error
}

// BulkPublish publishes every page (SelectAll) or the listed ids
// (SelectSelected). Documents fail independently; Success is false when
// any of them failed. Err is set only when the run could not start.
func (p *Publisher) BulkPublish(ctx context.Context, env string, req BulkRequest, global *content.GlobalConfig) *Result {
	mode := req.mode()
	start := time.Now()
	defer func() { p.recorder.ObserveRunDuration(string(mode), time.Since(start)) }()

	res := &Result{}
	r, err := p.prepare(ctx, env, mode, global)
	if err != nil {
		return res.Fail(err)
	}
	r.dequeue = mode == ModeBulkSelected && req.Dequeue

	items, err := p.bulkItems(ctx, mode, req.IDs)
	if err != nil {
		return res.Fail(err)
	}
	r.logger.Info("Bulk publish started", logfields.Count(len(items)))

	reports := p.runPool(ctx, r, items)

	res.Success = true
	published, failed := 0, 0
	for i, rep := range reports {
		switch {
		case rep == nil:
			// Never reached because the context was cancelled.
			res.Success = false
			failed++
			res.Logf("%s: skipped: %v", items[i].id, ctx.Err())
		case rep.failed():
			res.Success = false
			failed++
			res.Log = append(res.Log, rep.lines...)
		default:
			published++
			res.Log = append(res.Log, rep.lines...)
		}
	}

	if ctx.Err() == nil && r.global.Navigation {
		if err := p.uploadNavTree(ctx, r); err != nil {
			res.Success = false
			p.recorder.IncSideEffectFailure("navtree")
			r.logger.Error("Navigation tree upload failed", logfields.Error(err))
			res.Logf("error: navigation tree upload failed: %s", derrors.Describe(err))
		} else {
			res.Logf("navigation tree published to %s/%s", r.target.Bucket, NavTreeKey)
		}
	}

	res.Logf("bulk publish finished: %d published, %d failed", published, failed)
	r.logger.Info("Bulk publish finished",
		logfields.Count(published),
		logfields.Duration(time.Since(start)),
		slog.Int("failed", failed))
	return res
}

// bulkItems loads the documents of the run. Only a failure to list pages
// is fatal; a missing selected id becomes a failed item.
func (p *Publisher) bulkItems(ctx context.Context, mode Mode, ids []string) ([]bulkItem, error) {
	if mode == ModeBulkAll {
		docs, err := p.repo.QueryByType(ctx, content.TypePage)
		if err != nil {
			return nil, derrors.StoreError("list pages").WithCause(err).Fatal().Build()
		}
		items := make([]bulkItem, len(docs))
		for i, d := range docs {
			items[i] = bulkItem{id: d.ID, doc: d}
		}
		return items, nil
	}
	if len(ids) == 0 {
		return nil, derrors.ValidationError("selected bulk publish requires document ids").Build()
	}
	items := make([]bulkItem, len(ids))
	for i, id := range ids {
		items[i].id = id
		doc, err := p.repo.Get(ctx, id)
		switch {
		case store.IsNotFound(err):
			items[i].err = derrors.NotFoundError("document not found").WithContext("document_id", id).Build()
		case err != nil:
			items[i].err = derrors.StoreError("load document").WithCause(err).WithContext("document_id", id).Build()
		default:
			items[i].doc = doc
		}
	}
	return items, nil
}

// runPool fans the items out to a bounded set of workers. Reports are
// stored by position so the result log keeps document order.
func (p *Publisher) runPool(ctx context.Context, r *run, items []bulkItem) []*docReport {
	reports := make([]*docReport, len(items))
	if len(items) == 0 {
		return reports
	}
	concurrency := p.workers
	if concurrency > len(items) {
		concurrency = len(items)
	}
	if concurrency < 1 {
		concurrency = 1
	}
	p.recorder.SetPublishConcurrency(concurrency)

	tasks := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	worker := func() {
		defer wg.Done()
		for i := range tasks {
			select {
			case <-ctx.Done():
				continue
			default:
			}
			rep := p.publishItem(ctx, r, items[i])
			mu.Lock()
			reports[i] = rep
			mu.Unlock()
		}
	}
	wg.Add(concurrency)
	for range concurrency {
		go worker()
	}
	for i := range items {
		select {
		case <-ctx.Done():
			close(tasks)
			wg.Wait()
			return reports
		case tasks <- i:
		}
	}
	close(tasks)
	wg.Wait()
	return reports
}

func (p *Publisher) publishItem(ctx context.Context, r *run, it bulkItem) *docReport {
	if it.err != nil {
		rep := &docReport{id: it.id, fatal: newFatalStageError(StageLoad, it.err)}
		rep.logf("%s: failed at %s: %s", it.id, StageLoad, derrors.Describe(it.err))
		p.recorder.IncStageResult(string(StageLoad), metrics.ResultFatal)
		p.recorder.IncDocumentOutcome(metrics.OutcomeFailed)
		r.logger.Error("Publish stage failed", logfields.DocumentID(it.id), logfields.Stage(string(StageLoad)), logfields.Error(it.err))
		return rep
	}
	return p.publishDocument(ctx, r, it.doc)
}

func (p *Publisher) uploadNavTree(ctx context.Context, r *run) error {
	nav := r.nav
	if nav == nil {
		nav = []navtree.Node{}
	}
	data, err := json.Marshal(navtree.Document{NavTree: nav})
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryInternal, "encode navigation tree").Build()
	}
	if err := p.blobs.Upload(ctx, r.target.Bucket, NavTreeKey, data, blob.UploadOptions{ContentType: contentTypeJSON, Public: true}); err != nil {
		return derrors.BlobError("upload navigation tree").WithCause(err).WithContext("bucket", r.target.Bucket).Build()
	}
	return nil
}
