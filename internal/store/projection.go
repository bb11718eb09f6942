package store

import (
	"encoding/json"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
)

// decode unmarshals a stored row. With fields set, only those attributes
// plus id and otype survive, mirroring a projection expression.
func decode(data []byte, fields []string) (*content.Document, error) {
	if len(fields) > 0 {
		var all map[string]json.RawMessage
		if err := json.Unmarshal(data, &all); err != nil {
			return nil, derrors.StoreError("decode document").WithCause(err).Build()
		}
		keep := make(map[string]json.RawMessage, len(fields)+2)
		for _, k := range append([]string{"id", "otype"}, fields...) {
			if v, ok := all[k]; ok {
				keep[k] = v
			}
		}
		projected, err := json.Marshal(keep)
		if err != nil {
			return nil, derrors.StoreError("project document").WithCause(err).Build()
		}
		data = projected
	}
	var doc content.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, derrors.StoreError("decode document").WithCause(err).Build()
	}
	return &doc, nil
}
