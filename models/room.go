package models

// Room is a bookable unit in the catalog.
type Room struct {
	ID          int64   `bson:"id" json:"id"`
	Label       string  `bson:"label" json:"label"`              // Human-facing room number, unique
	Category    string  `bson:"category" json:"category"`        // e.g. "Standard", "Deluxe", "Suite"
	NightlyRate float64 `bson:"nightly_rate" json:"nightlyRate"` // Price per night, non-negative
	Available   bool    `bson:"available" json:"available"`      // Cached hint, the ledger is authoritative
}
