package fetcher

import (
	"bytes"
	"encoding/json"

	"jobboard-listing/internal/models"
)

// DecodeEnvelope splits a response body into raw items and pagination.
//
// A missing or non-array "data" is an empty result, a missing "pagination"
// defaults to page 1 of 1, and a bare JSON array is a non-paginated
// collection holding every item.
func DecodeEnvelope(body []byte) ([]json.RawMessage, models.PaginationMeta, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, models.DefaultPaginationMeta().Normalize(), nil
	}

	if trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, models.PaginationMeta{}, err
		}
		meta := models.PaginationMeta{CurrentPage: 1, LastPage: 1, TotalCount: len(raws)}.Normalize()
		return raws, meta, nil
	}

	var env models.Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, models.PaginationMeta{}, err
	}

	var raws []json.RawMessage
	data := bytes.TrimSpace(env.Data)
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &raws); err != nil {
			raws = nil
		}
	}
	return raws, env.Pagination.Meta(), nil
}
