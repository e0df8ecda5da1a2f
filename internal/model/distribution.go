package model

// DistributionPreview lists the winners a batch distribution would pay.
type DistributionPreview struct {
	Recipients        []string `json:"recipients"`
	Amounts           []string `json:"amounts"`
	TotalParticipants int      `json:"totalParticipants"`
	EligibleCount     int      `json:"eligibleCount"`
	Message           string   `json:"message,omitempty"`
}
