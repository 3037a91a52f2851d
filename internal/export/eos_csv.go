package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/LightBlast-creator/cuex/internal/show"
)

// utf8BOM is required by the Eos importer to detect UTF-8 text
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// eosCueID formats the cue identifier as "{cuelist}/{number}"
func eosCueID(cuelistID, cueNum int) string {
	return fmt.Sprintf("%d/%d", cuelistID, cueNum)
}

// EosCSV encodes the cue list in the Eos generic CSV layout. The importer
// expects CRLF line endings and a UTF-8 byte-order mark; the two timing
// columns are always left empty.
func (e *Encoder) EosCSV(s *show.Show) (*Artifact, error) {
	cuelistID := s.EosCuelistID
	if cuelistID <= 0 {
		cuelistID = show.DefaultEosCuelistID
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write([]string{"Cue", "Label", "Notes", "Up Time", "Down Time"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, song := range s.Songs {
		row := []string{
			eosCueID(cuelistID, cueNumber(song, i+1)),
			cueLabel(song),
			cueNotes(song),
			"",
			"",
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return &Artifact{
		Filename:    fmt.Sprintf("eos_show_%d.csv", s.ID),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}
