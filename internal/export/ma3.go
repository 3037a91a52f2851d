package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/LightBlast-creator/cuex/internal/show"
)

// SequenceCue is one cue of the grandMA3 sequence handed to the plugin
// packaging step
type SequenceCue struct {
	Number int
	Label  string
	Note   string
}

// ma3SequenceCues gathers every song into sequence-cue records in export
// order
func ma3SequenceCues(s *show.Show) []SequenceCue {
	cues := make([]SequenceCue, 0, len(s.Songs))
	for i, song := range s.Songs {
		cueNum := cueNumber(song, i+1)
		label := sanitizeCommand(cueLabel(song))
		if label == "" {
			label = fmt.Sprintf("Cue %d", cueNum)
		}
		cues = append(cues, SequenceCue{
			Number: cueNum,
			Label:  label,
			Note:   sanitizeCommand(cueNotes(song)),
		})
	}
	return cues
}

// luaQuote escapes a string for a double-quoted Lua literal
func luaQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func ma3PluginLua(title string, sequenceID int, cues []SequenceCue, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- %s cue list import\n", title)
	fmt.Fprintf(&b, "-- Generated: %s\n\n", now.Format("2006-01-02T15:04:05"))
	b.WriteString("local function main()\n")
	fmt.Fprintf(&b, "    local seq = %d\n", sequenceID)
	fmt.Fprintf(&b, "    Cmd(\"Store Sequence \" .. seq .. \" /NoConfirm\")\n")
	fmt.Fprintf(&b, "    Cmd(\"Label Sequence \" .. seq .. \" %s\")\n", strings.Trim(luaQuote(title), `"`))
	for _, cue := range cues {
		fmt.Fprintf(&b, "    Cmd(\"Store Sequence \" .. seq .. \" Cue %d /NoConfirm\")\n", cue.Number)
		fmt.Fprintf(&b, "    Cmd(\"Label Sequence \" .. seq .. \" Cue %d \" .. %s)\n", cue.Number, luaQuote(cue.Label))
		if cue.Note != "" {
			fmt.Fprintf(&b, "    Cmd(\"Set Sequence \" .. seq .. \" Cue %d Property Note \" .. %s)\n", cue.Number, luaQuote(cue.Note))
		}
	}
	b.WriteString("end\n\nreturn main\n")
	return b.String()
}

func ma3PluginXML(pluginName, luaFileName, provider, version string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<GMA3 DataVersion="1.9.3.3">
    <UserPlugin Name=%q Author=%q Version=%q>
        <ComponentLua Name=%q FileName=%q />
    </UserPlugin>
</GMA3>
`, pluginName, provider, version, pluginName, luaFileName)
}

// MA3 packages the cue list as a grandMA3 import plugin: a zip archive
// holding the plugin descriptor and a Lua component that rebuilds the
// sequence on the console.
func (e *Encoder) MA3(s *show.Show, now time.Time) (*Artifact, error) {
	title := strings.TrimSpace(s.Name)
	if title == "" {
		title = fmt.Sprintf("Show %d", s.ID)
	}
	sequenceID := s.MA3SequenceID
	if sequenceID <= 0 {
		sequenceID = show.DefaultMA3SequenceID
	}

	pluginName := safeFilename(strings.ReplaceAll(title, " ", "_")) + "_cuelist"
	luaFileName := pluginName + ".lua"

	cues := ma3SequenceCues(s)
	luaBody := ma3PluginLua(title, sequenceID, cues, now)
	xmlBody := ma3PluginXML(pluginName, luaFileName, e.provider, e.version)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range []struct {
		name string
		body string
	}{
		{pluginName + ".xml", xmlBody},
		{luaFileName, luaBody},
	} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: entry.name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("failed to create zip entry %s: %w", entry.name, err)
		}
		if _, err := w.Write([]byte(entry.body)); err != nil {
			return nil, fmt.Errorf("failed to write zip entry %s: %w", entry.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize plugin archive: %w", err)
	}

	return &Artifact{
		Filename:    pluginName + ".zip",
		ContentType: "application/zip",
		Data:        buf.Bytes(),
	}, nil
}
