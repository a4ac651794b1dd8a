package search

import (
	"slices"

	"github.com/mark-c-hall/movie-search/internal/models"
)

// NoResultsMessage is the notice shown when a search settles without matches.
const NoResultsMessage = "No movies found for your request."

type NoticeKind string

const NoticeError NoticeKind = "error"

// Notice is a transient notification. It is shown once and then dropped.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// State is the complete UI state owned by a Controller.
//
// Query "" means no search has been performed: no fetch runs and the grid
// stays hidden. IsLoading and IsError describe the latest fetch only.
type State struct {
	Query     string         `json:"query"`
	Movies    []models.Movie `json:"movies"`
	IsLoading bool           `json:"isLoading"`
	IsError   bool           `json:"isError"`
	Selected  *models.Movie  `json:"selectedMovie"`
	Notices   []Notice       `json:"notices"`
}

// ShowGrid reports whether the movie grid is part of the page.
func (s State) ShowGrid() bool {
	return s.Query != ""
}

func (s State) clone() State {
	out := s
	out.Movies = slices.Clone(s.Movies)
	if out.Movies == nil {
		out.Movies = []models.Movie{}
	}
	out.Notices = slices.Clone(s.Notices)
	if out.Notices == nil {
		out.Notices = []Notice{}
	}
	if s.Selected != nil {
		m := *s.Selected
		out.Selected = &m
	}
	return out
}
