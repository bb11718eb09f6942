package publish

import "git.home.luguber.info/inful/pagepublisher/internal/content"

// Mode is how a publish run was requested.
type Mode string

const (
	ModeSingle       Mode = "single"
	ModeBulkAll      Mode = "bulk-all"
	ModeBulkSelected Mode = "bulk-selected"
)

// DocumentRef names the page to publish, either by id or inline. An
// inline document is published as given without a store read.
type DocumentRef struct {
	ID     string            `json:"id,omitempty"`
	Inline *content.Document `json:"document,omitempty"`
}

// Selection chooses the documents of a bulk run.
type Selection string

const (
	SelectAll      Selection = "all"
	SelectSelected Selection = "selected"
)

// BulkRequest describes a bulk publish.
type BulkRequest struct {
	Selection Selection `json:"mode"`
	IDs       []string  `json:"ids,omitempty"`
	// Dequeue clears each published page's queued flag. Only honoured for
	// selected runs.
	Dequeue bool `json:"dequeue,omitempty"`
}

func (b BulkRequest) mode() Mode {
	if b.Selection == SelectSelected {
		return ModeBulkSelected
	}
	return ModeBulkAll
}
