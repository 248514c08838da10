package domain

import (
	"time"
)

// SubscriptionTier уровень подписки
type SubscriptionTier string

const (
	SubscriptionTierFree  SubscriptionTier = "free"
	SubscriptionTierBasic SubscriptionTier = "basic"
	SubscriptionTierPro   SubscriptionTier = "pro"
	SubscriptionTierElite SubscriptionTier = "elite"
)

// Valid проверяет, что уровень подписки известен
func (t SubscriptionTier) Valid() bool {
	switch t {
	case SubscriptionTierFree, SubscriptionTierBasic, SubscriptionTierPro, SubscriptionTierElite:
		return true
	}
	return false
}

// SubscriptionFeatures набор возможностей уровня подписки
type SubscriptionFeatures struct {
	DemosPerMonth         int  `json:"demos_per_month"`
	DetailedAnalysis      bool `json:"detailed_analysis"`
	TeammateSearch        bool `json:"teammate_search"`
	CustomRecommendations bool `json:"custom_recommendations"`
	PrioritySupport       bool `json:"priority_support"`
	AICoach               bool `json:"ai_coach"`
	TeamAnalysis          bool `json:"team_analysis"`
}

// HasFeature проверяет наличие именованной возможности
func (f SubscriptionFeatures) HasFeature(name string) bool {
	switch name {
	case "detailed_analysis":
		return f.DetailedAnalysis
	case "teammate_search":
		return f.TeammateSearch
	case "custom_recommendations":
		return f.CustomRecommendations
	case "priority_support":
		return f.PrioritySupport
	case "ai_coach":
		return f.AICoach
	case "team_analysis":
		return f.TeamAnalysis
	}
	return false
}

// SubscriptionPlan представляет собой план подписки
type SubscriptionPlan struct {
	Tier        SubscriptionTier     `json:"tier"`
	Price       float64              `json:"price"`
	Currency    string               `json:"currency"`
	Features    SubscriptionFeatures `json:"features"`
	Description string               `json:"description"`
}

// UserSubscription представляет собой подписку пользователя
type UserSubscription struct {
	UserID         string           `json:"user_id"`
	Tier           SubscriptionTier `json:"subscription_tier"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	IsActive       bool             `json:"is_active"`
	DemosRemaining int              `json:"demos_remaining"`
}
