package commands

import (
	"context"
	"slices"

	"git.home.luguber.info/inful/pagepublisher/internal/feeds"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
)

// FeedsCmd implements 'feeds'.
type FeedsCmd struct {
	Env    string   `arg:"" help:"Target environment"`
	Only   []string `name:"feed" help:"Generate only the named feeds" sep:","`
	Global string   `help:"JSON file overriding the stored site settings" type:"existingfile"`
}

func (f *FeedsCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	global, err := readGlobal(f.Global)
	if err != nil {
		return err
	}
	comps, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = comps.Close() }()

	specs, err := selectFeeds(comps.FeedSpecs(), f.Only)
	if err != nil {
		return err
	}
	rep := comps.Feeds.PublishFeeds(ctx, f.Env, specs, global)
	if err := printResult(g, rep); err != nil {
		return err
	}
	return outcome(rep.Err, rep.Success)
}

func selectFeeds(all []feeds.Spec, names []string) ([]feeds.Spec, error) {
	if len(names) == 0 {
		return all, nil
	}
	out := make([]feeds.Spec, 0, len(names))
	for _, n := range names {
		i := slices.IndexFunc(all, func(s feeds.Spec) bool { return s.Name == n })
		if i < 0 {
			return nil, derrors.ValidationError("unknown feed").WithContext("feed", n).Build()
		}
		out = append(out, all[i])
	}
	return out, nil
}
