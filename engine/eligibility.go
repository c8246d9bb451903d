package engine

import "github.com/opencourt/rotation-system/models"

// meetsCourtMinimum applies a court's rating threshold to one player.
// An unrated player fails a constrained court: a missing rating counts
// as below any minimum, never as exempt from it.
func meetsCourtMinimum(p *models.Player, court models.Court) bool {
	if court.MinimumRating == nil {
		return true
	}
	if p.Rating == nil {
		return false
	}
	return *p.Rating >= *court.MinimumRating
}

// CourtUsableFor reports whether a court may host the given group: the
// court must be active and every player must satisfy its minimum rating.
func CourtUsableFor(court models.Court, group []*models.Player) bool {
	if !court.IsActive {
		return false
	}
	for _, p := range group {
		if !meetsCourtMinimum(p, court) {
			return false
		}
	}
	return true
}
