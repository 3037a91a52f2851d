package extraction

import (
	"context"
	"regexp"
	"strings"

	"github.com/LightBlast-creator/cuex/pkg/logger"
)

var (
	// "Rollen:" section up to a blank line or the next structural header
	rolesSectionPattern = regexp.MustCompile(`(?is)Rollen[:\s]*(.*?)(?:\n\n|\nOrt:|\nZeit:|\nSzene|\n[A-Z]{2,}:)`)

	bulletRolePattern = regexp.MustCompile(`^[•\-*]\s*([A-ZÄÖÜ][A-ZÄÖÜa-zäöüß\s]+?):\s*(.*)$`)
	colonRolePattern  = regexp.MustCompile(`^([A-ZÄÖÜ][A-ZÄÖÜa-zäöüß\s]+?):\s*(.*)$`)

	uppercaseRolePattern = regexp.MustCompile(`(?m)^[•\-*\s]*([A-ZÄÖÜ][A-ZÄÖÜ\s]+):\s`)
	bulletScanPattern    = regexp.MustCompile(`(?m)^[•\-*]\s*([A-ZÄÖÜ][a-zäöüßA-ZÄÖÜ\s]+?):`)

	parentheticalPattern = regexp.MustCompile(`\s*\([^)]*\)\s*`)
)

// roleStrategy returns the roles it found, or an empty slice to pass the
// text on to the next strategy
type roleStrategy func(ctx context.Context, text string) []string

// discoverRoles runs the ordered fallback chain; the first strategy with
// a non-empty result wins. Names are cleaned of parenthetical asides and
// deduplicated preserving first-seen order.
func (p *Pipeline) discoverRoles(ctx context.Context, text string) []string {
	strategies := []roleStrategy{
		p.rolesFromSection,
		p.rolesFromUppercase,
		p.rolesFromBullets,
		p.rolesFromEntities,
	}

	var roles []string
	for _, strategy := range strategies {
		roles = strategy(ctx, text)
		if len(roles) > 0 {
			break
		}
	}

	return cleanRoles(roles)
}

// rolesFromSection parses bullet or colon-delimited "NAME: description"
// lines inside a "Rollen:" section
func (p *Pipeline) rolesFromSection(_ context.Context, text string) []string {
	m := rolesSectionPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var roles []string
	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if bm := bulletRolePattern.FindStringSubmatch(line); bm != nil {
			appendRole(&roles, bm[1], 0)
			continue
		}
		if cm := colonRolePattern.FindStringSubmatch(line); cm != nil {
			appendRole(&roles, cm[1], 3)
		}
	}
	return roles
}

// rolesFromUppercase scans the whole text for ALL-CAPS names followed by
// a colon, filtering the structural-keyword stoplist
func (p *Pipeline) rolesFromUppercase(_ context.Context, text string) []string {
	var roles []string
	for _, m := range uppercaseRolePattern.FindAllStringSubmatch(text, -1) {
		role := strings.TrimSpace(m[1])
		if role == "" || p.stoplisted(role) {
			continue
		}
		if !contains(roles, role) {
			roles = append(roles, role)
		}
	}
	return roles
}

// rolesFromBullets scans for bullet-prefixed "Name:" lines
func (p *Pipeline) rolesFromBullets(_ context.Context, text string) []string {
	var roles []string
	for _, m := range bulletScanPattern.FindAllStringSubmatch(text, -1) {
		appendRole(&roles, m[1], 3)
	}
	return roles
}

// rolesFromEntities is the statistical fallback: person entities reported
// by the language model. Failures degrade to an empty result so the
// import never aborts on a model error.
func (p *Pipeline) rolesFromEntities(ctx context.Context, text string) []string {
	if p.ner == nil {
		return nil
	}
	persons, err := p.ner.Persons(ctx, text)
	if err != nil {
		p.logger.Warn("Entity recognition fallback failed", logger.Error(err))
		return nil
	}
	var roles []string
	for _, person := range persons {
		if len(person) > 1 && !contains(roles, person) {
			roles = append(roles, person)
		}
	}
	return roles
}

func (p *Pipeline) stoplisted(role string) bool {
	upper := strings.ToUpper(role)
	for _, stop := range p.cfg.RoleStoplist {
		if upper == strings.ToUpper(stop) {
			return true
		}
	}
	return false
}

// appendRole adds a trimmed role, optionally enforcing a maximum word
// count, skipping duplicates
func appendRole(roles *[]string, raw string, maxWords int) {
	role := strings.TrimSpace(raw)
	if role == "" {
		return
	}
	if maxWords > 0 && len(strings.Fields(role)) > maxWords {
		return
	}
	if !contains(*roles, role) {
		*roles = append(*roles, role)
	}
}

// cleanRoles strips parenthetical asides and deduplicates while keeping
// first-seen order
func cleanRoles(roles []string) []string {
	var out []string
	for _, role := range roles {
		role = strings.TrimSpace(parentheticalPattern.ReplaceAllString(role, ""))
		if role != "" && !contains(out, role) {
			out = append(out, role)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
