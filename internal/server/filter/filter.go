// Package filter parses show query parameters for the API endpoints.
package filter

import (
	"net/url"
	"strconv"

	"github.com/agentstation/mediathek/pkg/constants"
	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

// ShowFilter is a parsed /shows request.
type ShowFilter struct {
	Query  snapshot.Query
	Limit  int
	Offset int
}

// Page describes one slice of a result list.
type Page struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// ParseShowFilter reads channel, topic, title, sort, order, precedence,
// limit and offset. Unknown sort columns and orders are validation errors;
// limit is clamped to [1, MaxPageSize].
func ParseShowFilter(values url.Values) (ShowFilter, error) {
	column, err := snapshot.ParseSortColumn(values.Get("sort"))
	if err != nil {
		return ShowFilter{}, err
	}
	order, err := snapshot.ParseSortOrder(values.Get("order"))
	if err != nil {
		return ShowFilter{}, err
	}
	precedence, err := snapshot.ParsePrecedence(values.Get("precedence"))
	if err != nil {
		return ShowFilter{}, err
	}

	limit, err := parseInt(values, "limit", constants.DefaultPageSize)
	if err != nil {
		return ShowFilter{}, err
	}
	offset, err := parseInt(values, "offset", 0)
	if err != nil {
		return ShowFilter{}, err
	}
	if offset < 0 {
		return ShowFilter{}, errors.NewValidationError("offset", offset, "must not be negative")
	}

	return ShowFilter{
		Query: snapshot.Query{
			Channel:    values.Get("channel"),
			Topic:      values.Get("topic"),
			Title:      values.Get("title"),
			SortColumn: column,
			SortOrder:  order,
			Precedence: precedence,
		},
		Limit:  min(max(limit, 1), constants.MaxPageSize),
		Offset: offset,
	}, nil
}

// Paginate returns the requested page of ids.
func (f ShowFilter) Paginate(ids []snapshot.ID) ([]snapshot.ID, Page) {
	page := Page{Total: len(ids), Limit: f.Limit, Offset: f.Offset}
	if f.Offset >= len(ids) {
		return []snapshot.ID{}, page
	}
	end := min(f.Offset+f.Limit, len(ids))
	out := ids[f.Offset:end]
	page.Count = len(out)
	return out, page
}

func parseInt(values url.Values, key string, def int) (int, error) {
	s := values.Get(key)
	if s == "" {
		return def, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewValidationError(key, s, "must be an integer")
	}
	return i, nil
}
