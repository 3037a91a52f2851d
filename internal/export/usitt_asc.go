package export

import (
	"fmt"
	"strings"

	"github.com/LightBlast-creator/cuex/internal/show"
)

// asciiOnly forces a string down to 7-bit ASCII; anything outside the
// range is replaced, never rejected
func asciiOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// USITTASC encodes the cue list as a USITT ASCII (.asc) document, the
// vendor-neutral interchange format Eos reads natively.
func (e *Encoder) USITTASC(s *show.Show) (*Artifact, error) {
	lines := []string{
		"! USITT ASCII Export from " + e.provider,
		"Ident 3:0",
		"$$",
		"! -------------------------------------------------",
		"! Cues",
		"! -------------------------------------------------",
	}

	for i, song := range s.Songs {
		cueNum := cueNumber(song, i+1)
		label := cueLabel(song)

		lines = append(lines,
			fmt.Sprintf("CUE %d", cueNum),
			"UP 0",
			"DOWN 0",
		)
		if label != "" {
			// The TEXT field is quote-delimited, so embedded quotes
			// become apostrophes
			clean := strings.ReplaceAll(label, `"`, "'")
			lines = append(lines, fmt.Sprintf("TEXT \"%s\"", clean))
		}
		lines = append(lines, "$$")
	}

	lines = append(lines, "ENDDATA")

	name := strings.TrimSpace(s.Name)
	if name == "" {
		name = fmt.Sprintf("Show %d", s.ID)
	}
	filename := strings.ReplaceAll(safeFilename(name), " ", "_") + ".asc"

	return &Artifact{
		Filename:    filename,
		ContentType: "text/plain",
		Data:        []byte(asciiOnly(strings.Join(lines, "\n"))),
	}, nil
}
