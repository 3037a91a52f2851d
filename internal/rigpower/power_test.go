package rigpower_test

import (
	"math"
	"testing"

	"github.com/LightBlast-creator/cuex/internal/rigpower"
	"github.com/LightBlast-creator/cuex/internal/show"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateNilAndEmptyRig(t *testing.T) {
	if got := rigpower.Calculate(nil); got != nil {
		t.Fatalf("expected nil summary for nil rig, got %+v", got)
	}
	if got := rigpower.Calculate(&show.RigSetup{}); got != nil {
		t.Fatalf("expected nil summary for empty rig, got %+v", got)
	}
}

func TestCalculateManualPowerOnly(t *testing.T) {
	sum := rigpower.Calculate(&show.RigSetup{
		PowerMain:  "1000",
		PowerLight: "500",
	})
	if sum == nil {
		t.Fatal("expected a summary")
	}
	if sum.TotalPower == nil || !almostEqual(*sum.TotalPower, 1500.0) {
		t.Fatalf("unexpected total_power: %v", sum.TotalPower)
	}
	if sum.TotalWatt != nil {
		t.Fatalf("expected nil total_watt without fixture data, got %v", *sum.TotalWatt)
	}
	if sum.Current1Ph != nil || sum.Current3Ph != nil {
		t.Fatal("expected nil currents without fixture data")
	}
}

func TestCalculateItemizedWattage(t *testing.T) {
	sum := rigpower.Calculate(&show.RigSetup{
		Spots: []show.RigItem{
			{Count: "10", Watt: "200"},
			{Count: "5", Watt: "100"},
		},
		Washes: []show.RigItem{
			{Count: "2", Watt: "300"},
		},
	})
	if sum == nil {
		t.Fatal("expected a summary")
	}
	if sum.TotalWatt == nil || !almostEqual(*sum.TotalWatt, 3100.0) {
		t.Fatalf("unexpected total_watt: %v", sum.TotalWatt)
	}
	if sum.TotalKW == nil || !almostEqual(*sum.TotalKW, 3.1) {
		t.Fatalf("unexpected total_kw: %v", sum.TotalKW)
	}
	if sum.CosPhi == nil || *sum.CosPhi != 0.95 {
		t.Fatalf("unexpected cos_phi: %v", sum.CosPhi)
	}
	if sum.ApparentKVA == nil || !almostEqual(*sum.ApparentKVA, 3.1/0.95) {
		t.Fatalf("unexpected apparent_kva: %v", sum.ApparentKVA)
	}
	if sum.Current1Ph == nil || !almostEqual(*sum.Current1Ph, 3100.0/(230.0*0.95)) {
		t.Fatalf("unexpected current_1ph: %v", sum.Current1Ph)
	}
	if sum.Current3Ph == nil || !almostEqual(*sum.Current3Ph, 3100.0/(math.Sqrt(3)*400.0*0.95)) {
		t.Fatalf("unexpected current_3ph: %v", sum.Current3Ph)
	}
	if sum.TotalPower != nil {
		t.Fatalf("expected nil total_power without manual entries, got %v", *sum.TotalPower)
	}
}

func TestCalculateCommaDecimals(t *testing.T) {
	sum := rigpower.Calculate(&show.RigSetup{
		Spots:      []show.RigItem{{Count: "2", Watt: "150,5"}},
		PowerSound: "12,5",
	})
	if sum == nil {
		t.Fatal("expected a summary")
	}
	if sum.TotalWatt == nil || !almostEqual(*sum.TotalWatt, 301.0) {
		t.Fatalf("unexpected total_watt: %v", sum.TotalWatt)
	}
	if sum.TotalPower == nil || !almostEqual(*sum.TotalPower, 12.5) {
		t.Fatalf("unexpected total_power: %v", sum.TotalPower)
	}
}

func TestCalculateInvalidNumbersYieldNil(t *testing.T) {
	sum := rigpower.Calculate(&show.RigSetup{
		Spots: []show.RigItem{{Count: "abc", Watt: "xyz"}},
	})
	if sum != nil {
		t.Fatalf("expected nil summary for unparsable input, got %+v", sum)
	}
}

func TestCalculateItemListReplacesLegacyWatt(t *testing.T) {
	sum := rigpower.Calculate(&show.RigSetup{
		Spots:     []show.RigItem{{Count: "1", Watt: "500"}},
		WattSpots: "9999",
		WattBeams: "250",
	})
	if sum == nil {
		t.Fatal("expected a summary")
	}
	// Spots are itemized so the legacy spots wattage must be ignored,
	// while the beams category still uses its legacy value
	if sum.TotalWatt == nil || !almostEqual(*sum.TotalWatt, 750.0) {
		t.Fatalf("unexpected total_watt: %v", sum.TotalWatt)
	}
}

func TestCalculateCustomDevices(t *testing.T) {
	sum := rigpower.Calculate(&show.RigSetup{
		CustomDevices: []show.CustomDevice{
			{Name: "Hazer", RigItem: show.RigItem{Count: "2", Watt: "1000"}},
		},
	})
	if sum == nil {
		t.Fatal("expected a summary")
	}
	if sum.TotalWatt == nil || !almostEqual(*sum.TotalWatt, 2000.0) {
		t.Fatalf("unexpected total_watt: %v", sum.TotalWatt)
	}
}
