package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/LightBlast-creator/cuex/internal/show"
)

const eosSheetName = "EOS_Cues"

// EosXLSX encodes the cue list as an Eos workbook with the same column
// semantics as EosCSV and a bold header row.
func (e *Encoder) EosXLSX(s *show.Show) (*Artifact, error) {
	cuelistID := s.EosCuelistID
	if cuelistID <= 0 {
		cuelistID = show.DefaultEosCuelistID
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(eosSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := []interface{}{"Cue", "Label", "Notes", "Up Time", "Down Time"}
	if err := f.SetSheetRow(eosSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(eosSheetName, "A1", "E1", boldStyle); err != nil {
		return nil, fmt.Errorf("failed to style header row: %w", err)
	}

	for i, song := range s.Songs {
		row := []interface{}{
			eosCueID(cuelistID, cueNumber(song, i+1)),
			cueLabel(song),
			cueNotes(song),
			"",
			"",
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(eosSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return &Artifact{
		Filename:    fmt.Sprintf("eos_show_%d.xlsx", s.ID),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}
