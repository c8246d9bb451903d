package models

// Court is a playable court within a session. Courts are evaluated in
// declared order when a round is generated. MinimumRating, when set,
// restricts the court to players whose rating meets it.
type Court struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	IsActive      bool     `json:"is_active"`
	MinimumRating *float64 `json:"minimum_rating,omitempty"`
}
