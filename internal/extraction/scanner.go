package extraction

import (
	"regexp"
	"strings"

	"github.com/LightBlast-creator/cuex/internal/show"
)

var (
	scenePattern        = regexp.MustCompile(`(?i)^(?:Szene|Scene|Akt|Act)\s*\d*\s*[:：\-–]?\s*(.*)?$`)
	rolesHeaderPattern  = regexp.MustCompile(`(?i)^Rollen\s*[:：]?\s*$`)
	roleishLinePattern  = regexp.MustCompile(`^[A-ZÄÖÜ][A-ZÄÖÜa-zäöüß\s]+:`)
	bulletPrefixPattern = regexp.MustCompile(`^[•\-*]`)
	genericSpeakerName  = `[A-ZÄÖÜ][A-ZÄÖÜa-zäöüß\s]+`
)

// speakerPatterns builds the two speaker-line matchers from the
// discovered roles: "ROLE: text" (optionally bulleted, optionally with a
// parenthetical stage direction) and "ROLE text". The space-separated
// form is only safe once concrete role names are known.
func speakerPatterns(roles []string) (withColon, withoutColon *regexp.Regexp) {
	nameAlt := genericSpeakerName
	if len(roles) > 0 {
		quoted := make([]string, len(roles))
		for i, role := range roles {
			quoted[i] = regexp.QuoteMeta(role)
		}
		nameAlt = strings.Join(quoted, "|")
	}

	withColon = regexp.MustCompile(`(?i)^[•\-*\s]*(` + nameAlt + `)(?:\s*\([^)]*\))?\s*[:：]\s*(.*)$`)
	if len(roles) > 0 {
		withoutColon = regexp.MustCompile(`(?i)^(` + nameAlt + `)(?:\s*\([^)]*\))?\s+(.+)$`)
	}
	return withColon, withoutColon
}

// scanBody walks the line stream and produces the provisional cue list:
// dialogue attributed to discovered roles, plus uncertain technical cues
// for unattributed lines once the roles section has definitively ended.
func (p *Pipeline) scanBody(text string, roles []string) []show.ExtractedCue {
	withColon, withoutColon := speakerPatterns(roles)

	var (
		cues            []show.ExtractedCue
		currentScene    string
		currentRole     string
		currentDialogue []string

		inRolesSection    bool
		rolesSectionEnded bool
	)

	flush := func() {
		if currentRole != "" && len(currentDialogue) > 0 {
			cues = append(cues, show.ExtractedCue{
				Scene: currentScene,
				Role:  currentRole,
				Text:  strings.Join(currentDialogue, " "),
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if rolesHeaderPattern.MatchString(line) {
			inRolesSection = true
			continue
		}

		if inRolesSection {
			if bulletPrefixPattern.MatchString(line) || roleishLinePattern.MatchString(line) {
				// Role declarations carry a description in parentheses
				// or run long; skip those, everything else may still be
				// the first dialogue line
				if strings.Contains(line, "(") || len(line) > p.cfg.RolesSectionLimit {
					continue
				}
			} else {
				inRolesSection = false
				rolesSectionEnded = true
			}
		}

		if scenePattern.MatchString(line) {
			flush()
			currentScene = line
			currentRole = ""
			currentDialogue = nil
			continue
		}

		m := withColon.FindStringSubmatch(line)
		if m == nil && withoutColon != nil {
			m = withoutColon.FindStringSubmatch(line)
		}
		if m != nil {
			flush()

			matchedName := strings.TrimSpace(m[1])
			dialogue := strings.TrimSpace(m[2])

			// Map back to the canonical spelling of the role
			currentRole = ""
			for _, role := range roles {
				if strings.EqualFold(role, matchedName) {
					currentRole = role
					break
				}
			}
			if currentRole == "" {
				currentRole = matchedName
			}

			currentDialogue = nil
			if dialogue != "" {
				currentDialogue = []string{dialogue}
			}
			continue
		}

		if currentRole != "" {
			currentDialogue = append(currentDialogue, line)
			continue
		}

		// Unattributed line: only worth emitting once we are past the
		// roles section, and only when it smells like a stage direction
		// or technical cue
		if !inRolesSection && rolesSectionEnded {
			if p.isTechnical(line) || len(line) > p.cfg.MinTechnicalLen {
				cues = append(cues, show.ExtractedCue{
					Scene:     currentScene,
					Text:      line,
					Uncertain: true,
				})
			}
		}
	}

	flush()

	// Drop cues that carry neither a role nor text
	out := cues[:0]
	for _, cue := range cues {
		if cue.Role != "" || cue.Text != "" {
			out = append(out, cue)
		}
	}
	return out
}

func (p *Pipeline) isTechnical(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range p.cfg.TechnicalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
