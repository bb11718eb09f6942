package commands

import (
	"context"
	"encoding/json"
	"os"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/publish"
)

// PublishCmd implements 'publish'.
type PublishCmd struct {
	Env      string `arg:"" help:"Target environment"`
	ID       string `arg:"" help:"Page id"`
	Document string `help:"Publish the page from this JSON file instead of the store" type:"existingfile"`
	Global   string `help:"JSON file overriding the stored site settings" type:"existingfile"`
}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	global, err := readGlobal(p.Global)
	if err != nil {
		return err
	}
	ref := publish.DocumentRef{ID: p.ID}
	if p.Document != "" {
		// #nosec G304 - operator supplied path
		data, err := os.ReadFile(p.Document)
		if err != nil {
			return derrors.WrapError(err, derrors.CategoryValidation, "read document").Build()
		}
		var doc content.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return derrors.WrapError(err, derrors.CategoryValidation, "parse document").Build()
		}
		if doc.ID == "" {
			doc.ID = p.ID
		}
		ref.Inline = &doc
	}

	comps, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = comps.Close() }()

	res := comps.Publisher.PublishPage(ctx, p.Env, ref, global)
	if err := printResult(g, res); err != nil {
		return err
	}
	return outcome(res.Err, res.Success)
}

// BulkPublishCmd implements 'bulk-publish'.
type BulkPublishCmd struct {
	Env     string   `arg:"" help:"Target environment"`
	IDs     []string `name:"ids" help:"Publish only these page ids" sep:","`
	Queued  bool     `help:"Publish the pages whose queued flag is set"`
	Dequeue bool     `help:"Clear the queued flag of each published page (selected runs only)"`
	Global  string   `help:"JSON file overriding the stored site settings" type:"existingfile"`
}

func (b *BulkPublishCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	global, err := readGlobal(b.Global)
	if err != nil {
		return err
	}
	comps, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = comps.Close() }()

	req := publish.BulkRequest{Selection: publish.SelectAll}
	if len(b.IDs) > 0 {
		req = publish.BulkRequest{Selection: publish.SelectSelected, IDs: b.IDs, Dequeue: b.Dequeue}
	}
	var res *publish.Result
	if b.Queued {
		res = queuedRun(ctx, comps.Publisher, b.Env, g)
	} else {
		res = comps.Publisher.BulkPublish(ctx, b.Env, req, global)
	}
	if err := printResult(g, res); err != nil {
		return err
	}
	return outcome(res.Err, res.Success)
}

// UnpublishCmd implements 'unpublish'.
type UnpublishCmd struct {
	Env  string `arg:"" help:"Target environment"`
	ID   string `arg:"" help:"Page id"`
	Path string `help:"Artifact path, required when the page is no longer stored"`
}

func (u *UnpublishCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	comps, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = comps.Close() }()

	res := comps.Publisher.Unpublish(ctx, u.Env, u.ID, u.Path)
	if err := printResult(g, res); err != nil {
		return err
	}
	return outcome(res.Err, res.Success)
}
