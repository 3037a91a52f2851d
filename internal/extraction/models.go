// Package extraction recovers role names and dialogue-associated stage
// cues from free-form theatrical-script PDFs. Results are provisional and
// always reviewed by a human before they touch a show.
package extraction

import (
	"context"

	"github.com/LightBlast-creator/cuex/internal/show"
)

// Config holds the tuning parameters of the pipeline. The thresholds
// were tuned against sample scripts and live in the config file rather
// than in code.
type Config struct {
	// RoleStoplist filters structural keywords out of the ALL-CAPS
	// role scan (scene/location/time/cue markers and the like)
	RoleStoplist []string
	// TechnicalMarkers flag an unattributed line as a technical cue
	TechnicalMarkers []string
	// MinTechnicalLen is the minimum length for an unattributed line
	// to be emitted as an uncertain cue without a technical marker
	MinTechnicalLen int
	// RolesSectionLimit is the maximum line length still considered a
	// role declaration inside a "Rollen:" section
	RolesSectionLimit int
}

// Result is the review payload handed back to the caller: the full
// extracted text, the provisional cues, and the discovered roles.
type Result struct {
	Text  string              `json:"text"`
	Cues  []show.ExtractedCue `json:"cues"`
	Roles []string            `json:"roles"`
}

// EntityRecognizer is the statistical fallback for role discovery when
// none of the structural heuristics find anything.
type EntityRecognizer interface {
	Persons(ctx context.Context, text string) ([]string, error)
}
