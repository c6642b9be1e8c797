// Package events announces graded attempts and badge changes to other
// services over a RabbitMQ topic exchange.
package events

import (
	"context"
	"time"
)

const (
	KeyAttemptGraded = "attempt.graded"
	KeyBadgeIssued   = "badge.issued"
	KeyBadgeUpgraded = "badge.upgraded"
)

type AttemptGraded struct {
	AttemptID    string    `json:"attemptId"`
	UserID       string    `json:"userId"`
	TestID       string    `json:"testId"`
	SkillID      string    `json:"skillId"`
	Score        int       `json:"score"`
	Passed       bool      `json:"passed"`
	PassingScore int       `json:"passingScore"`
	CompletedAt  time.Time `json:"completedAt"`
}

type BadgeAwarded struct {
	BadgeID       string    `json:"badgeId"`
	UserID        string    `json:"userId"`
	SkillID       string    `json:"skillId"`
	Tier          string    `json:"badgeType"`
	PreviousTier  string    `json:"previousBadgeType,omitempty"`
	TestAttemptID string    `json:"testAttemptId"`
	IssuedAt      time.Time `json:"issuedAt"`
}

// RoutingKey is badge.upgraded when the award replaced an earlier tier.
func (e BadgeAwarded) RoutingKey() string {
	if e.PreviousTier != "" {
		return KeyBadgeUpgraded
	}
	return KeyBadgeIssued
}

type Publisher interface {
	AttemptGraded(ctx context.Context, e AttemptGraded) error
	BadgeAwarded(ctx context.Context, e BadgeAwarded) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) AttemptGraded(context.Context, AttemptGraded) error { return nil }
func (Nop) BadgeAwarded(context.Context, BadgeAwarded) error { return nil }
func (Nop) Close() error { return nil }
