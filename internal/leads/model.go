package leads

import "time"

// Lead is a qualified booking request captured at the end of a conversation.
// One lead per session: re-finalizing the same session updates it in place.
type Lead struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	Channel       string    `json:"channel"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	Zip           string    `json:"zip,omitempty"`
	Building      string    `json:"building,omitempty"`
	Pets          string    `json:"pets,omitempty"`
	OutdoorWater  string    `json:"outdoorWater,omitempty"`
	Service       string    `json:"service,omitempty"`
	ArrivalWindow string    `json:"arrivalWindow,omitempty"`
	PreferredDate string    `json:"preferredDate,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	TotalPrice    float64   `json:"totalPrice,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
