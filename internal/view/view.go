// Package view renders controller state into the search page.
package view

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mark-c-hall/movie-search/internal/models"
	"github.com/mark-c-hall/movie-search/internal/search"
)

const (
	posterSize   = "w500"
	backdropSize = "original"
)

// Card is one movie in the grid.
type Card struct {
	ID        int
	Title     string
	Year      string
	PosterURL string
}

// Detail is the selected movie as the modal shows it.
type Detail struct {
	Title       string
	Overview    string
	ReleaseDate string
	Rating      string
	Votes       int
	ImageURL    string
}

type Page struct {
	State    search.State
	Cards    []Card
	Selected *Detail
	Notices  []search.Notice
}

type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

// NewRenderer parses templates/*.html from fsys.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	tmpl, err := template.ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}
	if tmpl.Lookup("page") == nil {
		return nil, fmt.Errorf("error parsing templates: no %q template defined", "page")
	}
	return &Renderer{tmpl: tmpl, policy: bluemonday.StrictPolicy()}, nil
}

// Page builds the view model. notices are the notices this render consumes;
// they are kept apart from state so a snapshot can be shown without
// dropping them.
func (r *Renderer) Page(state search.State, notices []search.Notice) Page {
	p := Page{
		State:   state,
		Cards:   make([]Card, 0, len(state.Movies)),
		Notices: notices,
	}
	for _, m := range state.Movies {
		p.Cards = append(p.Cards, Card{
			ID:        m.ID,
			Title:     m.Title,
			Year:      m.Year(),
			PosterURL: m.PosterURL(posterSize),
		})
	}
	if state.Selected != nil {
		d := r.detail(*state.Selected)
		p.Selected = &d
	}
	return p
}

func (r *Renderer) detail(m models.Movie) Detail {
	image := m.BackdropURL(backdropSize)
	if image == "" {
		image = m.PosterURL(posterSize)
	}
	return Detail{
		Title:       m.Title,
		Overview:    r.plainText(m.Overview),
		ReleaseDate: m.ReleaseDate,
		Rating:      fmt.Sprintf("%.1f/10", m.VoteAverage),
		Votes:       m.VoteCount,
		ImageURL:    image,
	}
}

// plainText strips any markup from s. The template escapes the result, so
// entities produced by the sanitizer are decoded first.
func (r *Renderer) plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(s)))
}

// Render writes the full page. Output is buffered so a template failure
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, state search.State, notices []search.Notice) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page", r.Page(state, notices)); err != nil {
		return fmt.Errorf("error rendering page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
