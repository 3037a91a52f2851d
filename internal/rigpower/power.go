// Package rigpower computes electrical load summaries from a rig
// inventory. The calculator is pure: no I/O, no logging, deterministic.
package rigpower

import (
	"math"
	"strconv"
	"strings"

	"github.com/LightBlast-creator/cuex/internal/show"
)

// CosPhi is the assumed power factor for lighting loads
const CosPhi = 0.95

// Summary is the computed load of a rig. Pointer fields are nil when the
// corresponding input carried no data; a nil *Summary means no load at
// all, which callers must distinguish from a computed zero.
type Summary struct {
	TotalWatt   *float64 `json:"total_watt"`
	TotalKW     *float64 `json:"total_kw"`
	ApparentKVA *float64 `json:"apparent_kva"`
	Current1Ph  *float64 `json:"current_1ph"`
	Current3Ph  *float64 `json:"current_3ph"`
	CosPhi      *float64 `json:"cos_phi"`
	TotalPower  *float64 `json:"total_power"`
}

// toFloat parses free-form numeric input. Comma decimals are accepted;
// anything unparsable contributes zero.
func toFloat(value string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// toCount parses a fixture count; malformed input counts as zero
func toCount(value string) int {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func itemsWatt(items []show.RigItem) float64 {
	total := 0.0
	for _, it := range items {
		total += toFloat(it.Watt) * float64(toCount(it.Count))
	}
	return total
}

// Calculate computes the load summary for a rig. It returns nil when
// neither fixture wattage nor manual power entries carry any load.
func Calculate(rig *show.RigSetup) *Summary {
	if rig == nil {
		rig = &show.RigSetup{}
	}

	// An item list fully replaces the legacy flat wattage for its
	// category, so nothing is counted twice.
	totalWatt := 0.0
	for _, cat := range rig.Categories() {
		if len(cat.Items) > 0 {
			totalWatt += itemsWatt(cat.Items)
		} else {
			totalWatt += toFloat(cat.LegacyWatt)
		}
	}
	for _, cd := range rig.CustomDevices {
		totalWatt += toFloat(cd.Watt) * float64(toCount(cd.Count))
	}

	totalPower := toFloat(rig.PowerMain) +
		toFloat(rig.PowerLight) +
		toFloat(rig.PowerSound) +
		toFloat(rig.PowerVideo) +
		toFloat(rig.PowerFOH) +
		toFloat(rig.PowerOther)

	if totalWatt <= 0 && totalPower <= 0 {
		return nil
	}

	sum := &Summary{}
	if totalPower > 0 {
		sum.TotalPower = ptr(totalPower)
	}
	if totalWatt > 0 {
		cosPhi := CosPhi
		totalKW := totalWatt / 1000.0
		sum.TotalWatt = ptr(totalWatt)
		sum.TotalKW = ptr(totalKW)
		sum.ApparentKVA = ptr(totalKW / cosPhi)
		// 1-phase 230 V
		sum.Current1Ph = ptr(totalWatt / (230.0 * cosPhi))
		// 3-phase 400 V symmetric: P = sqrt(3) * U * I * cos phi
		sum.Current3Ph = ptr(totalWatt / (math.Sqrt(3.0) * 400.0 * cosPhi))
		sum.CosPhi = ptr(cosPhi)
	}

	return sum
}

func ptr(f float64) *float64 { return &f }
