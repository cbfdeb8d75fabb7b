package models

// Track is a playable catalog item from the content provider.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	PreviewURL string `json:"previewUrl"`
}

// Label is the answer-option text for the track.
func (t Track) Label() string {
	return t.Title + " - " + t.Artist
}

// Playable reports whether the track can actually be used in a round.
func (t Track) Playable() bool {
	return t.PreviewURL != ""
}

// Question is one round's material, built once per game and immutable
// thereafter. CorrectIndex and Artist are withheld from clients until
// the reveal.
type Question struct {
	ID           string   `json:"id"`
	MediaURL     string   `json:"mediaUrl"`
	Options      []string `json:"options"` // exactly 4 distinct labels
	CorrectIndex int      `json:"-"`
	Artist       string   `json:"-"`
}
