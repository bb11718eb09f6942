package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	"git.home.luguber.info/inful/pagepublisher/internal/feeds"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/publish"
	"git.home.luguber.info/inful/pagepublisher/internal/server/responses"
)

// Publisher is the subset of publish.Publisher the API drives.
type Publisher interface {
	PublishPage(ctx context.Context, env string, ref publish.DocumentRef, global *content.GlobalConfig) *publish.Result
	BulkPublish(ctx context.Context, env string, req publish.BulkRequest, global *content.GlobalConfig) *publish.Result
	Unpublish(ctx context.Context, env, id, path string) *publish.Result
}

// FeedPublisher is the subset of feeds.Generator the API drives.
type FeedPublisher interface {
	PublishFeeds(ctx context.Context, env string, specs []feeds.Spec, global *content.GlobalConfig) *feeds.Report
}

// PublishHandlers serves the page and feed endpoints.
type PublishHandlers struct {
	publisher    Publisher
	feeds        FeedPublisher
	defaultFeeds []feeds.Spec
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewPublishHandlers wires the handlers. defaultFeeds is used when a feed
// request names none.
func NewPublishHandlers(p Publisher, f FeedPublisher, defaultFeeds []feeds.Spec, logger *slog.Logger) *PublishHandlers {
	return &PublishHandlers{
		publisher:    p,
		feeds:        f,
		defaultFeeds: defaultFeeds,
		errorAdapter: derrors.NewHTTPErrorAdapter(logger),
	}
}

// HandlePublish handles POST /api/v1/{env}/pages/{id}/publish.
func (h *PublishHandlers) HandlePublish(w http.ResponseWriter, r *http.Request) {
	var req responses.PublishRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	ref := publish.DocumentRef{ID: r.PathValue("id")}
	if req.Document != nil {
		if req.Document.ID == "" {
			req.Document.ID = ref.ID
		}
		if req.Document.ID != ref.ID {
			h.errorAdapter.WriteErrorResponse(w, r, derrors.ValidationError("document id does not match URL").
				WithContext("document_id", req.Document.ID).Build())
			return
		}
		ref.Inline = req.Document
	}
	h.writeResult(w, r, h.publisher.PublishPage(r.Context(), r.PathValue("env"), ref, req.Global))
}

// HandleBulkPublish handles POST /api/v1/{env}/pages/bulk-publish.
func (h *PublishHandlers) HandleBulkPublish(w http.ResponseWriter, r *http.Request) {
	var req responses.BulkPublishRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	switch req.Selection {
	case "":
		req.Selection = publish.SelectAll
	case publish.SelectAll, publish.SelectSelected:
	default:
		h.errorAdapter.WriteErrorResponse(w, r, derrors.ValidationError("mode must be all or selected").
			WithContext("mode", string(req.Selection)).Build())
		return
	}
	h.writeResult(w, r, h.publisher.BulkPublish(r.Context(), r.PathValue("env"), req.BulkRequest, req.Global))
}

// HandleUnpublish handles DELETE /api/v1/{env}/pages/{id}. The artifact path
// may be passed as ?path= for documents no longer in the store.
func (h *PublishHandlers) HandleUnpublish(w http.ResponseWriter, r *http.Request) {
	res := h.publisher.Unpublish(r.Context(), r.PathValue("env"), r.PathValue("id"), r.URL.Query().Get("path"))
	h.writeResult(w, r, res)
}

// HandleFeeds handles POST /api/v1/{env}/feeds.
func (h *PublishHandlers) HandleFeeds(w http.ResponseWriter, r *http.Request) {
	var req responses.FeedsRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	specs := req.Feeds
	if len(specs) == 0 {
		specs = h.defaultFeeds
	}
	rep := h.feeds.PublishFeeds(r.Context(), r.PathValue("env"), specs, req.Global)
	h.write(w, r, rep.Err, rep)
}

func (h *PublishHandlers) writeResult(w http.ResponseWriter, r *http.Request, res *publish.Result) {
	h.write(w, r, res.Err, res)
}

// write sends the result body. Aborted requests get the status their error
// category maps to; completed runs are 200 even when items failed.
func (h *PublishHandlers) write(w http.ResponseWriter, r *http.Request, runErr error, body any) {
	status := http.StatusOK
	if runErr != nil {
		status = h.errorAdapter.StatusCodeFor(runErr)
	}
	if err := writeJSON(w, status, body); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			derrors.WrapError(err, derrors.CategoryInternal, "failed to write publish response").Build())
	}
}
