package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/LightBlast-creator/cuex/internal/show"
)

// NomadCSV encodes the cue list in the ETC Nomad import layout: one row
// per song that has a name or notes, with sequential 1-based cue numbers.
func (e *Encoder) NomadCSV(s *show.Show) (*Artifact, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Cue Number", "Cue Name", "Notes"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, song := range s.Songs {
		notes := cueNotes(song)
		if strings.TrimSpace(song.Name) == "" && notes == "" {
			continue
		}
		if err := w.Write([]string{strconv.Itoa(i + 1), song.Name, notes}); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return &Artifact{
		Filename:    fmt.Sprintf("nomad_show_%d.csv", s.ID),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}
