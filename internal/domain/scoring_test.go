package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scoringCustomer() *Customer {
	return &Customer{
		Email:           &NullableString{String: "golfer@example.com"},
		Phone:           &NullableString{String: "5551234567"},
		Zip:             &NullableString{String: "49001"},
		IsLocal:         &NullableBool{Bool: true},
		PlayFrequency:   &NullableString{String: string(PlayFrequencyWeekly)},
		MemberElsewhere: &NullableBool{Bool: false},
		VisitCount:      5,
	}
}

func TestScoreMaximalCustomer(t *testing.T) {
	// 30 local + 25 weekly + 20 visits>=5 + 15 not member elsewhere
	// + 5 both contacts + 5 zip = 100
	assert.Equal(t, 100, Score(scoringCustomer()))
}

func TestScoreBands(t *testing.T) {
	t.Run("visit count tiers are exclusive", func(t *testing.T) {
		c := &Customer{}
		c.VisitCount = 1
		assert.Equal(t, 0, Score(c))
		c.VisitCount = 2
		assert.Equal(t, 10, Score(c))
		c.VisitCount = 3
		assert.Equal(t, 15, Score(c))
		c.VisitCount = 4
		assert.Equal(t, 15, Score(c))
		c.VisitCount = 5
		assert.Equal(t, 20, Score(c))
		c.VisitCount = 50
		assert.Equal(t, 20, Score(c))
	})

	t.Run("play frequency tiers are exclusive", func(t *testing.T) {
		c := &Customer{PlayFrequency: &NullableString{String: "rarely"}}
		assert.Equal(t, 5, Score(c))
		c.PlayFrequency.String = "monthly"
		assert.Equal(t, 15, Score(c))
		c.PlayFrequency.String = "weekly"
		assert.Equal(t, 25, Score(c))
	})

	t.Run("unknown tri-states score nothing", func(t *testing.T) {
		c := &Customer{
			IsLocal:         &NullableBool{IsNull: true},
			MemberElsewhere: &NullableBool{IsNull: true},
		}
		assert.Equal(t, 0, Score(c))
	})

	t.Run("member elsewhere true scores nothing", func(t *testing.T) {
		c := &Customer{MemberElsewhere: &NullableBool{Bool: true}}
		assert.Equal(t, 0, Score(c))
	})
}

func TestScoreMonotonicity(t *testing.T) {
	t.Run("visit count", func(t *testing.T) {
		c := scoringCustomer()
		prev := -1
		for visits := 1; visits <= 10; visits++ {
			c.VisitCount = visits
			s := Score(c)
			assert.GreaterOrEqual(t, s, prev)
			prev = s
		}
	})

	t.Run("locality false to true", func(t *testing.T) {
		c := scoringCustomer()
		c.IsLocal = &NullableBool{Bool: false}
		low := Score(c)
		c.IsLocal = &NullableBool{Bool: true}
		assert.GreaterOrEqual(t, Score(c), low)
	})

	t.Run("frequency tiers", func(t *testing.T) {
		c := scoringCustomer()
		var last int
		for _, freq := range []string{"rarely", "monthly", "weekly"} {
			c.PlayFrequency = &NullableString{String: freq}
			s := Score(c)
			assert.GreaterOrEqual(t, s, last)
			last = s
		}
	})
}

func TestScoreClamped(t *testing.T) {
	c := scoringCustomer()
	c.VisitCount = 1000
	s := Score(c)
	assert.LessOrEqual(t, s, 100)
	assert.GreaterOrEqual(t, s, 0)
}

func TestIsProspectLocalityGate(t *testing.T) {
	t.Run("maximal non-local is never a prospect", func(t *testing.T) {
		c := scoringCustomer()
		c.IsLocal = &NullableBool{Bool: false}
		assert.GreaterOrEqual(t, Score(c), ProspectScoreThreshold)
		assert.False(t, IsProspect(c))
	})

	t.Run("unknown locality is never a prospect", func(t *testing.T) {
		c := scoringCustomer()
		c.IsLocal = &NullableBool{IsNull: true}
		assert.False(t, IsProspect(c))
	})

	t.Run("local above threshold is a prospect", func(t *testing.T) {
		c := scoringCustomer()
		assert.True(t, IsProspect(c))
	})

	t.Run("local below threshold is not", func(t *testing.T) {
		c := &Customer{IsLocal: &NullableBool{Bool: true}, VisitCount: 1}
		assert.False(t, IsProspect(c))
	})
}

func TestRescore(t *testing.T) {
	c := scoringCustomer()
	c.Rescore()
	assert.Equal(t, 100, c.MembershipScore)
	assert.True(t, c.IsMembershipProspect)

	c.IsLocal = &NullableBool{Bool: false}
	c.Rescore()
	assert.Equal(t, 70, c.MembershipScore)
	assert.False(t, c.IsMembershipProspect)
}
