package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pagepublisher/internal/blob"
	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
	"git.home.luguber.info/inful/pagepublisher/internal/metrics"
	"git.home.luguber.info/inful/pagepublisher/internal/queue"
	"git.home.luguber.info/inful/pagepublisher/internal/render"
)

// docReport is the outcome of one document's stage machine.
type docReport struct {
	id       string
	key      string
	lines    []string
	fatal    *StageError
	warnings []*StageError
}

func (d *docReport) logf(format string, args ...any) {
	d.lines = append(d.lines, fmt.Sprintf(format, args...))
}

func (d *docReport) failed() bool { return d.fatal != nil }

func (d *docReport) outcome() metrics.OutcomeLabel {
	switch {
	case d.fatal != nil:
		return metrics.OutcomeFailed
	case len(d.warnings) > 0:
		return metrics.OutcomeWarning
	default:
		return metrics.OutcomePublished
	}
}

// stage times fn and records its result.
func (p *Publisher) stage(r *run, doc string, name StageName, fn func() *StageError) *StageError {
	start := time.Now()
	serr := fn()
	p.recorder.ObserveStageDuration(string(name), time.Since(start))
	switch {
	case serr == nil:
		p.recorder.IncStageResult(string(name), metrics.ResultSuccess)
	case serr.Kind == StageErrorWarning:
		p.recorder.IncStageResult(string(name), metrics.ResultWarning)
		p.recorder.IncSideEffectFailure(string(name))
		r.logger.Warn("Publish side effect failed", logfields.DocumentID(doc), logfields.Stage(string(name)), logfields.Error(serr.Err))
	default:
		p.recorder.IncStageResult(string(name), metrics.ResultFatal)
		r.logger.Error("Publish stage failed", logfields.DocumentID(doc), logfields.Stage(string(name)), logfields.Error(serr.Err))
	}
	return serr
}

// publishDocument runs the stage machine for one loaded document. The
// document is cloned first so the caller's copy is never mutated.
func (p *Publisher) publishDocument(ctx context.Context, r *run, src *content.Document) *docReport {
	doc := src.Clone()
	rep := &docReport{id: doc.ID}
	fail := func(serr *StageError) *docReport {
		rep.fatal = serr
		rep.logf("%s: failed at %s: %s", doc.ID, serr.Stage, derrors.Describe(serr.Err))
		p.recorder.IncDocumentOutcome(metrics.OutcomeFailed)
		return rep
	}

	if doc.OType != content.TypePage {
		return fail(newFatalStageError(StageLoad,
			derrors.ValidationError("document is not a page").WithContext("document_id", doc.ID).Build()))
	}
	if doc.CustomFieldValues == nil {
		doc.CustomFieldValues = map[string]json.RawMessage{}
	}
	now := p.now().UTC().Format(render.TimeFormat)
	if doc.PublishedAt == "" {
		doc.PublishedAt = now
	}
	if doc.UpdatedAt == "" {
		doc.UpdatedAt = now
	}

	var (
		rc     *render.RenderContext
		layout *render.Template
		html   string
	)
	if serr := p.stage(r, doc.ID, StageResolveLayout, func() *StageError {
		var err error
		rc, layout, err = r.resolver.Resolve(doc, r.global, r.nav)
		if err != nil {
			return newFatalStageError(StageResolveLayout, err)
		}
		return nil
	}); serr != nil {
		return fail(serr)
	}

	p.stage(r, doc.ID, StageComposeFragments, func() *StageError {
		r.composer.ComposeDocument(layout, doc, rc)
		return nil
	})

	if serr := p.stage(r, doc.ID, StageRender, func() *StageError {
		out, err := layout.Execute(rc.Scope())
		if err != nil {
			return newFatalStageError(StageRender,
				derrors.RenderError("render layout").WithCause(err).WithContext("document_id", doc.ID).Build())
		}
		html = render.InjectBranding(out)
		return nil
	}); serr != nil {
		return fail(serr)
	}

	rep.key = ArtifactKey(doc.Path)
	if serr := p.stage(r, doc.ID, StageUpload, func() *StageError {
		err := p.blobs.Upload(ctx, r.target.Bucket, rep.key, []byte(html), blob.UploadOptions{ContentType: contentTypeHTML, Public: true})
		if err != nil {
			return newFatalStageError(StageUpload,
				derrors.BlobError("upload artifact").WithCause(err).WithContext("document_id", doc.ID).Build())
		}
		return nil
	}); serr != nil {
		return fail(serr)
	}
	rep.logf("%s: published to %s/%s", doc.ID, r.target.Bucket, rep.key)

	if doc.SearchIndexable && p.queue != nil {
		if serr := p.stage(r, doc.ID, StageIndex, func() *StageError {
			return p.enqueue(ctx, queue.ActionAdd, doc.ID)
		}); serr != nil {
			rep.warnings = append(rep.warnings, serr)
			rep.logf("%s: warning: search index update failed: %s", doc.ID, derrors.Describe(serr.Err))
		}
	}

	if r.dequeue {
		if serr := p.stage(r, doc.ID, StageDequeue, func() *StageError {
			if err := p.repo.UpdateField(ctx, doc.ID, "queued", false); err != nil {
				return newWarnStageError(StageDequeue, err)
			}
			return nil
		}); serr != nil {
			rep.warnings = append(rep.warnings, serr)
			rep.logf("%s: warning: could not clear queued flag: %s", doc.ID, derrors.Describe(serr.Err))
		}
	}

	p.recorder.IncDocumentOutcome(rep.outcome())
	r.logger.Info("Published document", logfields.DocumentID(doc.ID), logfields.Key(rep.key), slog.Int("warnings", len(rep.warnings)))
	return rep
}

func (p *Publisher) enqueue(ctx context.Context, action queue.Action, id string) *StageError {
	err := queue.EnqueueIndexJob(ctx, p.queue, p.subject, queue.IndexJob{Action: action, DocumentID: id})
	if err != nil {
		return newWarnStageError(StageIndex,
			derrors.QueueError("enqueue search index job").WithCause(err).WithContext("document_id", id).Build())
	}
	return nil
}
