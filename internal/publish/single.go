package publish

import (
	"context"
	"time"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

// PublishPage renders and uploads one page. A missing document or layout
// aborts the request with Err set. A nil global loads the settings record.
func (p *Publisher) PublishPage(ctx context.Context, env string, ref DocumentRef, global *content.GlobalConfig) *Result {
	start := time.Now()
	defer func() { p.recorder.ObserveRunDuration(string(ModeSingle), time.Since(start)) }()

	res := &Result{}
	r, err := p.prepare(ctx, env, ModeSingle, global)
	if err != nil {
		return res.Fail(err)
	}

	doc, err := p.load(ctx, ref)
	if err != nil {
		return res.Fail(err)
	}

	rep := p.publishDocument(ctx, r, doc)
	res.Log = append(res.Log, rep.lines...)
	if rep.failed() {
		res.Success = false
		res.Err = rep.fatal.Err
		return res
	}
	res.Success = true
	return res
}

func (p *Publisher) load(ctx context.Context, ref DocumentRef) (*content.Document, error) {
	if ref.Inline != nil {
		if err := ref.Inline.Validate(); err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryValidation, "invalid inline document").Build()
		}
		return ref.Inline, nil
	}
	if ref.ID == "" {
		return nil, derrors.ValidationError("document id or inline document is required").Build()
	}
	doc, err := p.repo.Get(ctx, ref.ID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, derrors.NotFoundError("document not found").WithContext("document_id", ref.ID).Build()
		}
		return nil, derrors.StoreError("load document").WithCause(err).Fatal().WithContext("document_id", ref.ID).Build()
	}
	return doc, nil
}
