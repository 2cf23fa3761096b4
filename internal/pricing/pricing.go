package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// Service selects which pricing family a quote uses.
type Service string

const (
	ServiceCarpet     Service = "carpet"
	ServiceUpholstery Service = "upholstery"
	ServiceDuct       Service = "duct"
)

// ErrUnknownService is returned for a service selector the engine does not
// price. Callers must not treat the accompanying zero quote as a free
// service.
var ErrUnknownService = errors.New("pricing: unknown service")

const (
	carpetRoomPrice  = 50
	carpetStairPrice = 50
	carpetMinimum    = 150

	sectionalCushionPrice = 50
	sectionalMinimum      = 250
	reclinerPrice         = 85

	ductBasicPrice   = 200
	ductDeepPrice    = 500
	ductFurnacePrice = 200

	dryerVentBase     = 200
	dryerVentPerFoot  = 10
	dryerVentFreeFeet = 8
)

// UpholsteryItem is one piece of furniture in an upholstery quote.
type UpholsteryItem struct {
	Type     string `json:"type"`
	Cushions int    `json:"cushions"`
}

// Input carries the per-service quote counts. Only the fields for the chosen
// service are read; everything defaults to zero.
type Input struct {
	// carpet
	Rooms  int `json:"rooms"`
	Stairs int `json:"stairs"`

	// upholstery
	Items []UpholsteryItem `json:"items"`

	// duct
	Basic     int `json:"basic"`
	Deep      int `json:"deep"`
	Furnace   int `json:"furnace"`
	DryerFeet int `json:"dryerFeet"`
}

// Quote is a computed total with its itemized breakdown.
type Quote struct {
	Total     int    `json:"total"`
	Breakdown string `json:"breakdown"`
}

// Compute prices exactly one service family from its quote input. The result
// is deterministic and computed fresh on every call.
func Compute(service Service, in Input) (Quote, error) {
	switch service {
	case ServiceCarpet:
		return carpetQuote(in), nil
	case ServiceUpholstery:
		return upholsteryQuote(in), nil
	case ServiceDuct:
		return ductQuote(in), nil
	default:
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownService, service)
	}
}

func carpetQuote(in Input) Quote {
	total := in.Rooms*carpetRoomPrice + in.Stairs*carpetStairPrice
	if total < carpetMinimum {
		total = carpetMinimum
	}
	// Both lines always appear, even at zero.
	breakdown := []string{
		fmt.Sprintf("%d rooms", in.Rooms),
		fmt.Sprintf("%d stairs", in.Stairs),
	}
	return Quote{Total: total, Breakdown: strings.Join(breakdown, ", ")}
}

func upholsteryQuote(in Input) Quote {
	total := 0
	breakdown := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		switch item.Type {
		case "sectional":
			price := item.Cushions * sectionalCushionPrice
			if price < sectionalMinimum {
				price = sectionalMinimum
			}
			total += price
		case "recliner":
			total += reclinerPrice
		}
		// Unknown types contribute nothing but stay visible in the breakdown.
		cushions := item.Cushions
		if cushions == 0 {
			cushions = 1 // label default only, pricing above uses the raw count
		}
		breakdown = append(breakdown, fmt.Sprintf("%s(%d)", item.Type, cushions))
	}
	return Quote{Total: total, Breakdown: strings.Join(breakdown, ", ")}
}

func ductQuote(in Input) Quote {
	total := in.Basic*ductBasicPrice + in.Deep*ductDeepPrice + in.Furnace*ductFurnacePrice

	var breakdown []string
	if in.DryerFeet > 0 {
		extra := in.DryerFeet - dryerVentFreeFeet
		if extra < 0 {
			extra = 0
		}
		total += dryerVentBase + extra*dryerVentPerFoot
		// Display ordering: the dryer line leads the count lines.
		breakdown = append(breakdown, fmt.Sprintf("Dryer vent: %dft", in.DryerFeet))
	}
	if in.Basic > 0 {
		breakdown = append(breakdown, fmt.Sprintf("%d basic", in.Basic))
	}
	if in.Deep > 0 {
		breakdown = append(breakdown, fmt.Sprintf("%d deep", in.Deep))
	}
	if in.Furnace > 0 {
		breakdown = append(breakdown, fmt.Sprintf("%d furnace", in.Furnace))
	}
	return Quote{Total: total, Breakdown: strings.Join(breakdown, ", ")}
}
