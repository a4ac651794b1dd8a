package models

import "testing"

func TestMovie_Year(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2010-07-15", "2010"},
		{"1999", "1999"},
		{"", ""},
		{"99-01-01", ""},
	}
	for _, tt := range tests {
		if got := (Movie{ReleaseDate: tt.date}).Year(); got != tt.want {
			t.Errorf("Year(%q) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestMovie_ImageURLs(t *testing.T) {
	m := Movie{PosterPath: "/p.jpg"}

	if got := m.PosterURL("w500"); got != "https://image.tmdb.org/t/p/w500/p.jpg" {
		t.Errorf("unexpected poster url %q", got)
	}
	if got := m.BackdropURL("original"); got != "" {
		t.Errorf("expected empty backdrop url, got %q", got)
	}
}
