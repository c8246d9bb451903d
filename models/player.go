package models

import "time"

// Player is an entry in the club-wide player directory. Rating is an
// optional skill score (e.g. DUPR-style); players without one are treated
// as unrated.
type Player struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Rating    *float64  `json:"rating,omitempty" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
