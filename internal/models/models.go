package models

import "strings"

const imageBaseURL = "https://image.tmdb.org/t/p"

type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult"`
}

// PosterURL returns the TMDB image URL for the poster at the given size
// ("w500", "original", ...), or "" if the movie has no poster.
func (m Movie) PosterURL(size string) string {
	return imageURL(m.PosterPath, size)
}

func (m Movie) BackdropURL(size string) string {
	return imageURL(m.BackdropPath, size)
}

// Year is the four digit year of ReleaseDate, or "" when unknown.
func (m Movie) Year() string {
	year, _, _ := strings.Cut(m.ReleaseDate, "-")
	if len(year) != 4 {
		return ""
	}
	return year
}

func imageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + "/" + size + path
}
