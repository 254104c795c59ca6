package domain

// OrganicCandidate is a content item with its unboosted ranking score, as
// supplied by the content metadata source.
type OrganicCandidate struct {
	Content      ContentRef `json:"content"`
	OrganicScore float64    `json:"organic_score"`
}

// FeedCandidate is one ranked feed entry. It is built fresh on every pass.
type FeedCandidate struct {
	Content        ContentRef `json:"content"`
	OrganicScore   float64    `json:"organic_score"`
	IsSponsored    bool       `json:"is_sponsored"`
	CampaignID     string     `json:"campaign_id,omitempty"`
	Multiplier     float64    `json:"multiplier"`
	EffectiveScore float64    `json:"effective_score"`
	Position       int        `json:"position"`
}
