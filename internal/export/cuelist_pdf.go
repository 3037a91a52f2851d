package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/LightBlast-creator/cuex/internal/show"
)

// CuelistPDF renders the cue list as a printable A4 table for the
// operator's desk.
func (e *Encoder) CuelistPDF(s *show.Show, now time.Time) (*Artifact, error) {
	title := strings.TrimSpace(s.Name)
	if title == "" {
		title = fmt.Sprintf("Show %d", s.ID)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetTitle(title+" - Cue List", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title+" - Cue List", "", 1, "L", false, 0, "")
	if s.Artist != "" || s.Date != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, strings.TrimSpace(s.Artist+"  "+s.Date), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	type column struct {
		title string
		width float64
	}
	columns := []column{
		{"#", 12},
		{"Name", 50},
		{"Mood", 30},
		{"Colors", 30},
		{"Notes", 68},
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range columns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i, song := range s.Songs {
		cells := []string{
			fmt.Sprintf("%d", cueNumber(song, i+1)),
			song.Name,
			song.Mood,
			song.Colors,
			cueNotes(song),
		}
		for c, col := range columns {
			text := cells[c]
			// Keep rows single-line; long notes are truncated on paper,
			// the console exports carry the full text
			if pdf.GetStringWidth(text) > col.width-2 {
				for len(text) > 0 && pdf.GetStringWidth(text+"...") > col.width-2 {
					text = text[:len(text)-1]
				}
				text += "..."
			}
			pdf.CellFormat(col.width, 6, text, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render cue list pdf: %w", err)
	}

	return &Artifact{
		Filename:    safeFilename(strings.ReplaceAll(title, " ", "_")) + "_Cuelist.pdf",
		ContentType: "application/pdf",
		Data:        buf.Bytes(),
	}, nil
}
