package extraction_test

import (
	"context"
	"errors"
	"testing"

	"github.com/LightBlast-creator/cuex/internal/extraction"
	"github.com/LightBlast-creator/cuex/pkg/logger"
)

type stubRecognizer struct {
	persons []string
	err     error
	called  bool
}

func (s *stubRecognizer) Persons(ctx context.Context, text string) ([]string, error) {
	s.called = true
	return s.persons, s.err
}

func testConfig() extraction.Config {
	return extraction.Config{
		RoleStoplist:      []string{"SZENE", "SCENE", "ORT", "ZEIT", "CUE", "LICHT", "TON", "MUSIK", "ROLLEN"},
		TechnicalMarkers:  []string{"licht", "ton", "cue", "musik", "effekt", "sound"},
		MinTechnicalLen:   20,
		RolesSectionLimit: 100,
	}
}

func newPipeline(t *testing.T, ner extraction.EntityRecognizer) *extraction.Pipeline {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return extraction.NewPipeline(testConfig(), ner, log)
}

const sampleScript = `Rollen:
` + "•" + ` MARA: die mutige Heldin (Hauptrolle)
` + "•" + ` TOM: ihr Bruder (Nebenrolle)

Szene 1: Am Fluss
MARA: Hallo.
TOM: Hi!
Wie geht es dir?

Szene 2: Nacht
Licht auf blau wechseln
ok
`

func TestExtractSampleScript(t *testing.T) {
	result := newPipeline(t, nil).Extract(context.Background(), sampleScript)

	if len(result.Roles) != 2 || result.Roles[0] != "MARA" || result.Roles[1] != "TOM" {
		t.Fatalf("unexpected roles: %v", result.Roles)
	}

	if len(result.Cues) != 3 {
		t.Fatalf("expected three cues, got %d: %+v", len(result.Cues), result.Cues)
	}

	first := result.Cues[0]
	if first.Role != "MARA" || first.Text != "Hallo." || first.Scene != "Szene 1: Am Fluss" || first.Uncertain {
		t.Fatalf("unexpected first cue: %+v", first)
	}

	// Continuation lines are appended to the open dialogue
	second := result.Cues[1]
	if second.Role != "TOM" || second.Text != "Hi! Wie geht es dir?" {
		t.Fatalf("unexpected second cue: %+v", second)
	}

	// An unattributed line with a technical marker becomes an uncertain
	// cue; the short "ok" line is dropped
	third := result.Cues[2]
	if !third.Uncertain || third.Role != "" || third.Text != "Licht auf blau wechseln" {
		t.Fatalf("unexpected third cue: %+v", third)
	}
	if third.Scene != "Szene 2: Nacht" {
		t.Fatalf("uncertain cue should carry the current scene: %+v", third)
	}
}

func TestRoleDiscoveryFromUppercaseSpeakers(t *testing.T) {
	text := `SZENE: eins
MARA: Hallo zusammen.
TOM: Guten Abend.
`
	result := newPipeline(t, nil).Extract(context.Background(), text)

	// SZENE is stoplisted, the speakers are not
	if len(result.Roles) != 2 || result.Roles[0] != "MARA" || result.Roles[1] != "TOM" {
		t.Fatalf("unexpected roles: %v", result.Roles)
	}
}

func TestRoleDiscoveryEntityFallback(t *testing.T) {
	stub := &stubRecognizer{persons: []string{"Mara", "Tom"}}
	text := `ein text ohne erkennbare struktur
mara spricht leise mit tom
`
	result := newPipeline(t, stub).Extract(context.Background(), text)

	if !stub.called {
		t.Fatal("expected entity-recognition fallback to run")
	}
	if len(result.Roles) != 2 || result.Roles[0] != "Mara" {
		t.Fatalf("unexpected roles: %v", result.Roles)
	}
}

func TestRoleDiscoveryEntityFailureDegradesToEmpty(t *testing.T) {
	stub := &stubRecognizer{err: errors.New("model unavailable")}
	result := newPipeline(t, stub).Extract(context.Background(), "nur fliesstext ohne rollen")

	if len(result.Roles) != 0 {
		t.Fatalf("expected no roles, got %v", result.Roles)
	}
	if len(result.Cues) != 0 {
		t.Fatalf("expected no cues, got %+v", result.Cues)
	}
}

func TestUnattributedLinesBeforeRolesSectionEndAreIgnored(t *testing.T) {
	// Without a roles section the uncertain-cue channel never opens
	text := `MARA: Hallo.

Licht auf rot wechseln sofort bitte
`
	result := newPipeline(t, nil).Extract(context.Background(), text)

	for _, cue := range result.Cues {
		if cue.Uncertain {
			t.Fatalf("unexpected uncertain cue: %+v", cue)
		}
	}
}

func TestLongUnattributedLineBecomesUncertain(t *testing.T) {
	text := `Rollen:
` + "•" + ` MARA: die Heldin (Hauptrolle)

Szene 1
Alle gehen langsam von der Buehne ab
`
	result := newPipeline(t, nil).Extract(context.Background(), text)

	found := false
	for _, cue := range result.Cues {
		if cue.Uncertain && cue.Text == "Alle gehen langsam von der Buehne ab" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected long stage direction as uncertain cue, got %+v", result.Cues)
	}
}

func TestSceneHeaderFlushesOpenDialogue(t *testing.T) {
	text := `MARA: Erster Satz.
Szene 2
MARA: Zweiter Satz.
`
	result := newPipeline(t, nil).Extract(context.Background(), text)

	if len(result.Cues) != 2 {
		t.Fatalf("expected two cues, got %+v", result.Cues)
	}
	if result.Cues[0].Scene != "" || result.Cues[0].Text != "Erster Satz." {
		t.Fatalf("unexpected first cue: %+v", result.Cues[0])
	}
	if result.Cues[1].Scene != "Szene 2" || result.Cues[1].Text != "Zweiter Satz." {
		t.Fatalf("unexpected second cue: %+v", result.Cues[1])
	}
}
