package pricing

import (
	"errors"
	"testing"
)

func TestComputeCarpet(t *testing.T) {
	tests := []struct {
		name          string
		in            Input
		wantTotal     int
		wantBreakdown string
	}{
		{"minimum applies", Input{Rooms: 1}, 150, "1 rooms, 0 stairs"},
		{"exactly at minimum", Input{Rooms: 3}, 150, "3 rooms, 0 stairs"},
		{"rooms and stairs", Input{Rooms: 4, Stairs: 2}, 300, "4 rooms, 2 stairs"},
		{"stairs only still hits minimum", Input{Stairs: 1}, 150, "0 rooms, 1 stairs"},
		{"zero input charges minimum", Input{}, 150, "0 rooms, 0 stairs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(ServiceCarpet, tt.in)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if got.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", got.Total, tt.wantTotal)
			}
			if got.Breakdown != tt.wantBreakdown {
				t.Errorf("Breakdown = %q, want %q", got.Breakdown, tt.wantBreakdown)
			}
		})
	}
}

func TestComputeUpholstery(t *testing.T) {
	tests := []struct {
		name          string
		in            Input
		wantTotal     int
		wantBreakdown string
	}{
		{
			"sectional under minimum",
			Input{Items: []UpholsteryItem{{Type: "sectional", Cushions: 3}}},
			250, "sectional(3)",
		},
		{
			"sectional above minimum",
			Input{Items: []UpholsteryItem{{Type: "sectional", Cushions: 7}}},
			350, "sectional(7)",
		},
		{
			"recliner flat rate",
			Input{Items: []UpholsteryItem{{Type: "recliner", Cushions: 1}}},
			85, "recliner(1)",
		},
		{
			"mixed pieces",
			Input{Items: []UpholsteryItem{
				{Type: "sectional", Cushions: 5},
				{Type: "recliner", Cushions: 1},
				{Type: "recliner", Cushions: 1},
			}},
			420, "sectional(5), recliner(1), recliner(1)",
		},
		{
			"unknown piece listed but free",
			Input{Items: []UpholsteryItem{{Type: "ottoman"}}},
			0, "ottoman(1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(ServiceUpholstery, tt.in)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if got.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", got.Total, tt.wantTotal)
			}
			if got.Breakdown != tt.wantBreakdown {
				t.Errorf("Breakdown = %q, want %q", got.Breakdown, tt.wantBreakdown)
			}
		})
	}
}

func TestComputeDuct(t *testing.T) {
	tests := []struct {
		name          string
		in            Input
		wantTotal     int
		wantBreakdown string
	}{
		{"basic only", Input{Basic: 1}, 200, "1 basic"},
		{"deep only", Input{Deep: 1}, 500, "1 deep"},
		{"one of each", Input{Basic: 1, Deep: 1, Furnace: 1}, 900, "1 basic, 1 deep, 1 furnace"},
		{"dryer within included feet", Input{DryerFeet: 8}, 200, "Dryer vent: 8ft"},
		{"dryer beyond included feet", Input{DryerFeet: 10}, 220, "Dryer vent: 10ft"},
		{"dryer line leads counts", Input{Basic: 2, DryerFeet: 12}, 640, "Dryer vent: 12ft, 2 basic"},
		{"empty input quotes zero", Input{}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(ServiceDuct, tt.in)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if got.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", got.Total, tt.wantTotal)
			}
			if got.Breakdown != tt.wantBreakdown {
				t.Errorf("Breakdown = %q, want %q", got.Breakdown, tt.wantBreakdown)
			}
		})
	}
}

func TestComputeUnknownService(t *testing.T) {
	got, err := Compute(Service("pool"), Input{Rooms: 3})
	if !errors.Is(err, ErrUnknownService) {
		t.Fatalf("err = %v, want ErrUnknownService", err)
	}
	if got.Total != 0 || got.Breakdown != "" {
		t.Errorf("quote = %+v, want zero value", got)
	}
}
