package analytics

import "testing"

func TestCalculateHeartRateZones(t *testing.T) {
	zones := CalculateHeartRateZones(200)

	if len(zones) != 5 {
		t.Fatalf("expected 5 zones, got %d", len(zones))
	}

	wantThresholds := []float64{100, 120, 140, 160, 180}
	wantLabels := []string{"Very Light", "Light", "Moderate", "Hard", "Maximum"}

	for i, zone := range zones {
		if zone.Zone != i+1 {
			t.Errorf("zone %d: expected number %d, got %d", i, i+1, zone.Zone)
		}
		if zone.Threshold != wantThresholds[i] {
			t.Errorf("zone %d: expected threshold %v, got %v", i+1, wantThresholds[i], zone.Threshold)
		}
		if zone.Label != wantLabels[i] {
			t.Errorf("zone %d: expected label %q, got %q", i+1, wantLabels[i], zone.Label)
		}
		if zone.Color == "" {
			t.Errorf("zone %d: expected a display color", i+1)
		}
	}
}

func TestCalculateHeartRateZonesIncreasing(t *testing.T) {
	zones := CalculateHeartRateZones(187)

	for i := 1; i < len(zones); i++ {
		if zones[i].Threshold <= zones[i-1].Threshold {
			t.Errorf("zone %d threshold %v not above zone %d threshold %v",
				zones[i].Zone, zones[i].Threshold, zones[i-1].Zone, zones[i-1].Threshold)
		}
	}
}

func TestCalculateHeartRateZonesNonPositiveMaxHR(t *testing.T) {
	// Non-positive max HR is computed as-is, not rejected.
	zones := CalculateHeartRateZones(0)
	if len(zones) != 5 {
		t.Fatalf("expected 5 zones, got %d", len(zones))
	}
	for _, zone := range zones {
		if zone.Threshold != 0 {
			t.Errorf("zone %d: expected threshold 0 for max HR 0, got %v", zone.Zone, zone.Threshold)
		}
	}

	zones = CalculateHeartRateZones(-100)
	if zones[0].Threshold != -50 {
		t.Errorf("expected threshold -50 for max HR -100, got %v", zones[0].Threshold)
	}
}

func TestCalculateHeartRateZonesFixedDefinitions(t *testing.T) {
	// Two calls must not share backing storage.
	first := CalculateHeartRateZones(200)
	first[0].Label = "mutated"

	second := CalculateHeartRateZones(200)
	if second[0].Label != "Very Light" {
		t.Errorf("zone definitions were mutated by a previous call: got %q", second[0].Label)
	}
}
