// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"strconv"

	"github.com/agentstation/mediathek/pkg/shows"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// ShowRow is the printable form of one query result.
type ShowRow struct {
	ID       snapshot.ID `json:"id" yaml:"id"`
	Channel  string      `json:"channel" yaml:"channel"`
	Topic    string      `json:"topic" yaml:"topic"`
	Title    string      `json:"title" yaml:"title"`
	Date     string      `json:"date,omitempty" yaml:"date,omitempty"`
	Time     string      `json:"time" yaml:"time"`
	Duration string      `json:"duration" yaml:"duration"`
	URL      string      `json:"url" yaml:"url"`
}

// NewShowRow formats s with the given preferred media quality.
func NewShowRow(id snapshot.ID, s shows.Show, kind shows.URLKind) ShowRow {
	return ShowRow{
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

// ShowsToTableData converts query rows to table format.
// Wide output adds the duration and URL columns.
func ShowsToTableData(rows []ShowRow, wide bool) Data {
	headers := []string{"ID", "Channel", "Topic", "Title", "Date", "Time"}
	align := []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft}
	if wide {
		headers = append(headers, "Duration", "URL")
		align = append(align, AlignRight, AlignLeft)
	}

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := []string{strconv.Itoa(r.ID), r.Channel, r.Topic, Truncate(r.Title, 60), dash(r.Date), r.Time}
		if wide {
			row = append(row, r.Duration, r.URL)
		}
		out = append(out, row)
	}

	return Data{Headers: headers, Rows: out, ColumnAlignment: align}
}

// ShowToTableData lists every field of one show as property rows.
func ShowToTableData(id snapshot.ID, s shows.Show, kind shows.URLKind) Data {
	rows := [][]string{
		{"ID", strconv.Itoa(id)},
		{"Channel", s.Channel},
		{"Topic", s.Topic},
		{"Title", s.Title},
		{"Date", dash(s.Date.String())},
		{"Time", shows.FormatClock(s.Time)},
		{"Duration", shows.FormatClock(s.Duration)},
		{"URL", s.PreferredURL(kind)},
		{"URL (default)", s.URL},
		{"URL (small)", dash(s.URLSmall())},
		{"URL (large)", dash(s.URLLarge())},
		{"Website", dash(s.Website)},
		{"Description", dash(Truncate(s.Description, 200))},
	}
	return Data{Headers: []string{"Property", "Value"}, Rows: rows}
}

// ValuesToTableData renders a single column of values.
func ValuesToTableData(header string, values []string) Data {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return Data{Headers: []string{header}, Rows: rows}
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
