package domain

import "fmt"

// RewardType identifies one entry of the fixed reward catalog
type RewardType string

const (
	RewardFreeBeer        RewardType = "free_beer"
	RewardFreeSoftDrink   RewardType = "free_soft_drink"
	RewardProShopCredit   RewardType = "pro_shop_credit"
	RewardFnBCredit       RewardType = "fnb_credit"
	RewardPercentDiscount RewardType = "percent_discount"
)

// GlobalDefaultReward is the final fallback when neither the capture, the
// A/B test nor the location selects a reward.
const GlobalDefaultReward = RewardFreeSoftDrink

// rewardDescriptions maps each catalog entry to its staff-facing description
var rewardDescriptions = map[RewardType]string{
	RewardFreeBeer:        "Free draft beer 🍺",
	RewardFreeSoftDrink:   "Free soft drink 🥤",
	RewardProShopCredit:   "$10 pro shop credit 🏌️",
	RewardFnBCredit:       "$10 food & beverage credit 🍔",
	RewardPercentDiscount: "10% off your next round ⛳",
}

// Validate checks if the reward type is part of the catalog
func (rt RewardType) Validate() error {
	if _, ok := rewardDescriptions[rt]; !ok {
		return NewValidationError(fmt.Sprintf("invalid reward type: %s", rt))
	}
	return nil
}

// Description returns the human-readable reward description shown on the
// confirmation screen and at redemption.
func (rt RewardType) Description() string {
	if desc, ok := rewardDescriptions[rt]; ok {
		return desc
	}
	return string(rt)
}
