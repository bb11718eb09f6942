package publish

import (
	"context"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

// LoadGlobalConfig reads the site settings record. A missing record yields
// empty settings; any other store failure is fatal to the request.
func LoadGlobalConfig(ctx context.Context, repo store.Repository, id string) (content.GlobalConfig, error) {
	if id == "" {
		id = content.DefaultConfigID
	}
	doc, err := repo.Get(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return content.GlobalConfig{}, nil
		}
		return content.GlobalConfig{}, derrors.StoreError("load global config").WithCause(err).Fatal().Build()
	}
	if doc.Settings == nil {
		return content.GlobalConfig{}, nil
	}
	return doc.Settings.Clone(), nil
}
