package entity

import "time"

// Listing is a project posted to the shared feed.
//
// DisplayPrice keeps the pt-BR formatted string the user typed
// ("1.500,00"); Price is the numeric value derived from it. Both are
// stored so clients can render exactly what was entered while sorting
// on the parsed number.
type Listing struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DisplayPrice string    `json:"display_price"`
	Price        float64   `json:"price"`
	PartySize    int       `json:"party_size"`
	OwnerID      string    `json:"owner_id,omitempty"`
	OwnerName    string    `json:"owner_name"`
	OwnerEmail   string    `json:"owner_email,omitempty"`
	OwnerPhone   string    `json:"owner_phone,omitempty"`
	OwnerAvatar  string    `json:"owner_avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayDate renders CreatedAt the way the mobile screens show it.
func (l Listing) DisplayDate() string {
	return l.CreatedAt.Format("02/01/2006")
}
