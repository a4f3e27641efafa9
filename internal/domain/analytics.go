package domain

import "context"

// AnalyticsSnapshot is a read-only rollup for the staff dashboard
type AnalyticsSnapshot struct {
	TotalCustomers    int64            `json:"total_customers"`
	NewThisMonth      int64            `json:"new_this_month"`
	Prospects         int64            `json:"prospects"`
	TotalCaptures     int64            `json:"total_captures"`
	RedeemedCaptures  int64            `json:"redeemed_captures"`
	RedemptionRate    float64          `json:"redemption_rate"`
	ByBookingSource   map[string]int64 `json:"by_booking_source"`
	ByRewardType      map[string]int64 `json:"by_reward_type"`
	OpenPipelineCount int64            `json:"open_pipeline_count"`
}

// AnalyticsRepository computes dashboard rollups
type AnalyticsRepository interface {
	// ComputeSnapshot aggregates the per-course counters in one pass
	ComputeSnapshot(ctx context.Context, courseID string) (*AnalyticsSnapshot, error)
}

// AnalyticsService serves dashboard rollups
type AnalyticsService interface {
	ComputeSnapshot(ctx context.Context, courseID string) (*AnalyticsSnapshot, error)
}
