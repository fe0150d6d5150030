package models

// SpinPrize is the prize payload returned to the wheel
type SpinPrize struct {
	ID     string `json:"id,omitempty"`
	Label  string `json:"label"`
	Number int    `json:"number"`
}

// SpinResult is the outcome of a spin request
type SpinResult struct {
	AlreadyPlayed bool      `json:"alreadyPlayed"`
	Prize         SpinPrize `json:"prize"`
}

// ParticipantResult is the read-only view of a participant
type ParticipantResult struct {
	Found     bool       `json:"found"`
	HasPlayed *bool      `json:"hasPlayed,omitempty"`
	Prize     *SpinPrize `json:"prize,omitempty"`
}

// ResetResult is returned by an inventory reset
type ResetResult struct {
	Success bool `json:"success"`
}

// SpinPrizeFromMarker converts a persisted marker into the response payload
func SpinPrizeFromMarker(m *AwardMarker) SpinPrize {
	return SpinPrize{
		ID:     m.PrizeID,
		Label:  m.Label,
		Number: m.Number,
	}
}
