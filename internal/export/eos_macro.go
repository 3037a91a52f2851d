package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/LightBlast-creator/cuex/internal/show"
)

// EosMacro encodes the cue list as an Eos command sequence that can be
// pasted into a macro or imported as a .txt file. All dynamic text goes
// through sanitizeCommand because the console command line cannot parse
// embedded quotes or newlines.
func (e *Encoder) EosMacro(s *show.Show, now time.Time) (*Artifact, error) {
	title := strings.TrimSpace(s.Name)
	if title == "" {
		title = "Show"
	}
	macroID := s.EosMacroID
	if macroID <= 0 {
		macroID = show.DefaultEosMacroID
	}

	lines := []string{
		"Clear_CommandLine",
		"# EOS Macro Export for: " + title,
		fmt.Sprintf("# Macro ID: %d", macroID),
		"# Generated: " + now.Format("2006-01-02T15:04:05"),
		"",
		fmt.Sprintf("Macro %d Label %s Enter", macroID, sanitizeCommand(title)),
		"",
	}

	for i, song := range s.Songs {
		cueNum := cueNumber(song, i+1)
		name := sanitizeCommand(song.Name)
		if name == "" {
			name = fmt.Sprintf("Cue %d", cueNum)
		}

		label := name
		mood := sanitizeCommand(song.Mood)
		colors := sanitizeCommand(song.Colors)
		if mood != "" || colors != "" {
			label += " [" + mood + "|" + colors + "]"
		}
		lines = append(lines, fmt.Sprintf("Cue %d Label %s Enter", cueNum, label))

		notes := sanitizeCommand(song.SpecialNotes)
		if notes == "" {
			notes = sanitizeCommand(song.GeneralNotes)
		}
		if notes != "" {
			lines = append(lines, fmt.Sprintf("Cue %d Notes %s Enter", cueNum, notes))
		}
	}

	return &Artifact{
		Filename:    safeFilename(strings.ReplaceAll(title, " ", "_")) + "_EOS_Macro.txt",
		ContentType: "text/plain",
		Data:        []byte(strings.Join(lines, "\n")),
	}, nil
}
