package domain

// Membership scoring thresholds. The persisted prospect flag and the browse
// view intentionally use different cutoffs: the flag is the strict rule used
// for pipeline auto-enrollment, the browse default is a looser net for staff
// reviewing candidates.
const (
	ProspectScoreThreshold   = 60
	DefaultBrowseScoreCutoff = 50
	MaxMembershipScore       = 100
)

// Score computes the 0-100 membership prospect score from the customer's
// profile. Pure function, called synchronously after every mutation.
//
// Visit-count and play-frequency tiers are mutually exclusive: only the
// highest applicable tier counts.
func Score(c *Customer) int {
	score := 0

	if c.IsLocal != nil && !c.IsLocal.IsNull && c.IsLocal.Bool {
		score += 30
	}

	if c.PlayFrequency != nil && !c.PlayFrequency.IsNull {
		switch PlayFrequency(c.PlayFrequency.String) {
		case PlayFrequencyWeekly:
			score += 25
		case PlayFrequencyMonthly:
			score += 15
		case PlayFrequencyRarely:
			score += 5
		}
	}

	switch {
	case c.VisitCount >= 5:
		score += 20
	case c.VisitCount >= 3:
		score += 15
	case c.VisitCount == 2:
		score += 10
	}

	if c.MemberElsewhere != nil && !c.MemberElsewhere.IsNull && !c.MemberElsewhere.Bool {
		score += 15
	}

	if c.HasEmail() && c.HasPhone() {
		score += 5
	}

	if c.Zip != nil && !c.Zip.IsNull && c.Zip.String != "" {
		score += 5
	}

	if score > MaxMembershipScore {
		score = MaxMembershipScore
	}
	return score
}

// IsProspect applies the strict persisted-flag rule: locality is a hard gate
// regardless of how high the score is.
func IsProspect(c *Customer) bool {
	local := c.IsLocal != nil && !c.IsLocal.IsNull && c.IsLocal.Bool
	return local && Score(c) >= ProspectScoreThreshold
}

// Rescore recomputes and stores the derived score and prospect flag
func (c *Customer) Rescore() {
	c.MembershipScore = Score(c)
	c.IsMembershipProspect = IsProspect(c)
}
