// Package export converts show snapshots into the interchange formats
// consumed by lighting consoles. Every encoder is a pure function over an
// immutable snapshot: identical input yields identical bytes, except for
// embedded generation timestamps where a format carries one.
package export

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/LightBlast-creator/cuex/internal/show"
)

// Artifact is one encoded export: the file content plus the suggested
// download filename and MIME type.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Encoder bundles the provenance identity written into formats that carry
// one (MVR UserData, MA3 plugin descriptor).
type Encoder struct {
	provider string
	version  string
}

// NewEncoder creates an encoder with the given provenance identity
func NewEncoder(provider, version string) *Encoder {
	if provider == "" {
		provider = "CueX"
	}
	return &Encoder{provider: provider, version: version}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\w\-. ]+`)
	repeatedWhitespace  = regexp.MustCompile(`\s+`)
)

// safeFilename strips characters that are unsafe in download filenames
func safeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "show"
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if len(name) > 80 {
		name = name[:80]
	}
	return name
}

// cueLabel builds the exported cue label: the song name plus a
// "[mood|colors]" suffix when either is set
func cueLabel(song *show.Song) string {
	label := song.Name
	if song.Mood != "" || song.Colors != "" {
		label += " [" + song.Mood + "|" + song.Colors + "]"
	}
	return label
}

// cueNotes joins the special and general notes of a song
func cueNotes(song *show.Song) string {
	return strings.TrimSpace(strings.TrimSpace(song.SpecialNotes) + " " + strings.TrimSpace(song.GeneralNotes))
}

// sanitizeCommand cleans text for a console command line: the parsers
// cannot handle embedded newlines or double quotes
func sanitizeCommand(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, `"`, "'")
	return strings.TrimSpace(repeatedWhitespace.ReplaceAllString(text, " "))
}

// cueNumber returns the exported cue number of a song, falling back to
// its list position when order_index was never assigned
func cueNumber(song *show.Song, position int) int {
	if song.OrderIndex > 0 {
		return song.OrderIndex
	}
	return position
}

// itemCount parses a fixture count; malformed input counts as zero
func itemCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
