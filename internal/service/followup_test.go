package service

import (
	"testing"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func followupCustomer() *domain.Customer {
	return &domain.Customer{
		ID:         "cust-1",
		CourseID:   "pinehurst",
		Email:      &domain.NullableString{String: "jordan@example.com"},
		FirstName:  &domain.NullableString{String: "Jordan"},
		IsLocal:    &domain.NullableBool{Bool: true},
		VisitCount: 1,
	}
}

func TestPlanFollowups(t *testing.T) {
	course := &domain.Course{ID: "pinehurst", Name: "Pinehurst Municipal", CodePrefix: "PH"}

	t.Run("new local customer gets a welcome email", func(t *testing.T) {
		entries, err := planFollowups(course, followupCustomer(), true, "PHK7M2Q9", "Free draft beer 🍺")
		require.NoError(t, err)
		require.Len(t, entries, 1)

		entry := entries[0]
		assert.Equal(t, domain.EmailTemplateWelcome, entry.Template)
		assert.Equal(t, "jordan@example.com", entry.Recipient)
		assert.Equal(t, "Welcome to Pinehurst Municipal!", entry.Subject)
		assert.Contains(t, entry.HTMLBody, "Hi Jordan")
		assert.Contains(t, entry.HTMLBody, "PHK7M2Q9")
		assert.Contains(t, entry.HTMLBody, "Free draft beer")
	})

	t.Run("new non-local customer gets nothing", func(t *testing.T) {
		c := followupCustomer()
		c.IsLocal = &domain.NullableBool{Bool: false}

		entries, err := planFollowups(course, c, true, "PHK7M2Q9", "")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("third visit triggers the milestone email", func(t *testing.T) {
		c := followupCustomer()
		c.VisitCount = 3

		entries, err := planFollowups(course, c, false, "PHK7M2Q9", "")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.EmailTemplateMilestone3, entries[0].Template)
		assert.Contains(t, entries[0].HTMLBody, "3 times")
	})

	t.Run("fifth visit triggers the second milestone", func(t *testing.T) {
		c := followupCustomer()
		c.VisitCount = 5

		entries, err := planFollowups(course, c, false, "PHK7M2Q9", "")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.EmailTemplateMilestone5, entries[0].Template)
	})

	t.Run("fourth visit triggers nothing", func(t *testing.T) {
		c := followupCustomer()
		c.VisitCount = 4

		entries, err := planFollowups(course, c, false, "PHK7M2Q9", "")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("opted-out customers get nothing", func(t *testing.T) {
		c := followupCustomer()
		c.VisitCount = 3
		c.OptedOutOfEmail = true

		entries, err := planFollowups(course, c, false, "PHK7M2Q9", "")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("customers without an email get nothing", func(t *testing.T) {
		c := followupCustomer()
		c.VisitCount = 3
		c.Email = &domain.NullableString{IsNull: true}

		entries, err := planFollowups(course, c, false, "PHK7M2Q9", "")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("missing first name falls back in the template", func(t *testing.T) {
		c := followupCustomer()
		c.FirstName = nil

		entries, err := planFollowups(course, c, true, "PHK7M2Q9", "Free draft beer 🍺")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].HTMLBody, "Hi there")
	})
}
