package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/agentstation/mediathek"
	"github.com/agentstation/mediathek/internal/server/cache"
	"github.com/agentstation/mediathek/internal/server/filter"
	"github.com/agentstation/mediathek/internal/server/response"
	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/shows"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

// ShowSummary is the list view of a show.
type ShowSummary struct {
	ID       snapshot.ID `json:"id"`
	Channel  string      `json:"channel"`
	Topic    string      `json:"topic"`
	Title    string      `json:"title"`
	Date     string      `json:"date,omitempty"`
	Time     string      `json:"time"`
	Duration string      `json:"duration"`
	URL      string      `json:"url"`
}

// ShowDetail is the single-show view including every stream URL.
type ShowDetail struct {
	ShowSummary
	Description string     `json:"description,omitempty"`
	Website     string     `json:"website,omitempty"`
	URLDefault  string     `json:"url_default"`
	URLSmall    string     `json:"url_small,omitempty"`
	URLLarge    string     `json:"url_large,omitempty"`
	Airs        *time.Time `json:"airs,omitempty"`
}

func summarize(id snapshot.ID, s shows.Show, kind shows.URLKind) ShowSummary {
	return ShowSummary{
		ID:       id,
		Channel:  s.Channel,
		Topic:    s.Topic,
		Title:    s.Title,
		Date:     s.Date.String(),
		Time:     shows.FormatClock(s.Time),
		Duration: shows.FormatClock(s.Duration),
		URL:      s.PreferredURL(kind),
	}
}

func detail(id snapshot.ID, s shows.Show, kind shows.URLKind) ShowDetail {
	d := ShowDetail{
		ShowSummary: summarize(id, s, kind),
		Description: s.Description,
		Website:     s.Website,
		URLDefault:  s.URL,
		URLSmall:    s.URLSmall(),
		URLLarge:    s.URLLarge(),
	}
	if !s.Date.IsZero() {
		airs := s.Timestamp()
		d.Airs = &airs
	}
	return d
}

// client resolves the catalog or writes a 503.
func (h *Handlers) client(w http.ResponseWriter) (mediathek.Client, bool) {
	c, err := h.app.Client()
	if err != nil || c == nil {
		h.logger.Error().Err(err).Msg("Catalog client unavailable")
		response.ServiceUnavailable(w, "Catalog not available")
		return nil, false
	}
	return c, true
}

// HandleListShows handles GET /api/v1/shows.
// @Summary Query shows
// @Description Case-insensitive substring query over channel, topic and title
// @Tags shows
// @Produce json
// @Param channel query string false "Channel substring"
// @Param topic query string false "Topic substring"
// @Param title query string false "Title substring"
// @Param sort query string false "Sort column (channel, topic, title, date, time, duration)"
// @Param order query string false "Sort order (asc, desc)"
// @Param precedence query string false "Criterion order (channel-first, title-first)"
// @Param limit query integer false "Page size (default: 100, max: 1000)"
// @Param offset query integer false "Result offset"
// @Success 200 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Security ApiKeyAuth
// @Router /api/v1/shows [get].
func (h *Handlers) HandleListShows(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}

	// generation before snapshot: a racing publish only makes the entry newer
	key := cache.Key(client.Generation(), "shows", r.URL.RawQuery)
	result, err := h.cache.Remember(key, func() (any, error) {
		f, err := filter.ParseShowFilter(r.URL.Query())
		if err != nil {
			return nil, err
		}
		snap := client.Snapshot()
		page, info := f.Paginate(snap.Query(f.Query))

		kind := client.Settings().PreferredURL()
		list := make([]ShowSummary, 0, len(page))
		for _, id := range page {
			s, err := snap.Show(id)
			if err != nil {
				return nil, err
			}
			list = append(list, summarize(id, s, kind))
		}
		return map[string]any{"shows": list, "pagination": info}, nil
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, result)
}

// HandleGetShow handles GET /api/v1/shows/{id}.
// @Summary Get show by id
// @Description Ids are positions in the current snapshot and change on refresh
// @Tags shows
// @Produce json
// @Param id path integer true "Show id"
// @Success 200 {object} response.Response{data=ShowDetail}
// @Failure 404 {object} response.Response{error=response.Error}
// @Security ApiKeyAuth
// @Router /api/v1/shows/{id} [get].
func (h *Handlers) HandleGetShow(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}

	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		response.ErrorFromType(w, errors.NewValidationError("id", raw, "must be an integer"))
		return
	}

	s, err := client.Show(id)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, detail(id, s, client.Settings().PreferredURL()))
}

// HandleChannels handles GET /api/v1/channels.
// @Summary List channels
// @Tags shows
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Security ApiKeyAuth
// @Router /api/v1/channels [get].
func (h *Handlers) HandleChannels(w http.ResponseWriter, _ *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}

	result, _ := h.cache.Remember(cache.Key(client.Generation(), "channels"), func() (any, error) {
		channels := client.Channels()
		return map[string]any{"channels": channels, "count": len(channels)}, nil
	})
	response.OK(w, result)
}

// HandleTopics handles GET /api/v1/topics.
// @Summary List topics
// @Description Topics of one channel, or of all channels
// @Tags shows
// @Produce json
// @Param channel query string false "Exact channel, case-insensitive"
// @Success 200 {object} response.Response{data=object}
// @Security ApiKeyAuth
// @Router /api/v1/topics [get].
func (h *Handlers) HandleTopics(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}

	channel := r.URL.Query().Get("channel")
	result, _ := h.cache.Remember(cache.Key(client.Generation(), "topics", channel), func() (any, error) {
		topics := client.Topics(channel)
		return map[string]any{"channel": channel, "topics": topics, "count": len(topics)}, nil
	})
	response.OK(w, result)
}
