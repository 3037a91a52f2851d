package export_test

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/LightBlast-creator/cuex/internal/export"
	"github.com/LightBlast-creator/cuex/internal/show"
)

func readZipEntry(t *testing.T, zr *zip.Reader, name string) string {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", name, err)
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("failed to read %s: %v", name, err)
		}
		return string(raw)
	}
	t.Fatalf("missing zip entry %s", name)
	return ""
}

func TestMA3PluginArchive(t *testing.T) {
	s := &show.Show{
		ID:            5,
		Name:          "Herbst Tour",
		MA3SequenceID: 205,
		Songs: []*show.Song{
			{ID: 1, OrderIndex: 1, Name: "Intro", Mood: "dark", SpecialNotes: "haze on"},
			{ID: 2, OrderIndex: 2},
		},
	}

	now := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	artifact, err := export.NewEncoder("CueX", "4.0.1").MA3(s, now)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if artifact.Filename != "Herbst_Tour_cuelist.zip" {
		t.Fatalf("unexpected filename: %q", artifact.Filename)
	}

	zr, err := zip.NewReader(bytes.NewReader(artifact.Data), int64(len(artifact.Data)))
	if err != nil {
		t.Fatalf("artifact is not a zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected descriptor and lua component, got %d entries", len(zr.File))
	}

	descriptor := readZipEntry(t, zr, "Herbst_Tour_cuelist.xml")
	if !strings.Contains(descriptor, `UserPlugin Name="Herbst_Tour_cuelist"`) {
		t.Fatalf("unexpected descriptor:\n%s", descriptor)
	}
	if !strings.Contains(descriptor, `FileName="Herbst_Tour_cuelist.lua"`) {
		t.Fatalf("descriptor must reference the lua component:\n%s", descriptor)
	}

	lua := readZipEntry(t, zr, "Herbst_Tour_cuelist.lua")
	if !strings.Contains(lua, "local seq = 205") {
		t.Fatalf("plugin must use the configured sequence ID:\n%s", lua)
	}
	if !strings.Contains(lua, `Cue 1 " .. "Intro [dark|]"`) {
		t.Fatalf("missing cue label command:\n%s", lua)
	}
	if !strings.Contains(lua, `Property Note " .. "haze on"`) {
		t.Fatalf("missing cue note command:\n%s", lua)
	}
	// The nameless second song still gets a synthesized label
	if !strings.Contains(lua, `Cue 2 " .. "Cue 2"`) {
		t.Fatalf("missing synthesized label:\n%s", lua)
	}
}

func TestMA3DefaultSequenceID(t *testing.T) {
	s := &show.Show{ID: 1, Name: "Test"}
	artifact, err := export.NewEncoder("CueX", "").MA3(s, time.Now())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	zr, _ := zip.NewReader(bytes.NewReader(artifact.Data), int64(len(artifact.Data)))
	lua := readZipEntry(t, zr, "Test_cuelist.lua")
	if !strings.Contains(lua, "local seq = 101") {
		t.Fatalf("expected default sequence ID 101:\n%s", lua)
	}
}
