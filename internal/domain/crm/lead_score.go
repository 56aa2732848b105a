package crm

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LeadLevel is the temperature bucket for a lead score
type LeadLevel string

const (
	LeadLevelCold    LeadLevel = "cold"
	LeadLevelWarm    LeadLevel = "warm"
	LeadLevelHot     LeadLevel = "hot"
	LeadLevelBoiling LeadLevel = "boiling"
)

// LeadScore is the derived temperature of a client
type LeadScore struct {
	Score int       `json:"score"`
	Level LeadLevel `json:"level"`
}

var (
	valueTierHigh = decimal.NewFromInt(1_000_000)
	valueTierMid  = decimal.NewFromInt(500_000)
	valueTierLow  = decimal.NewFromInt(100_000)
)

// ScoreLead computes the lead temperature of a client as of now.
// The raw sum may drop below zero for stale leads before it is clamped to [0,100].
func ScoreLead(c *Client, now time.Time) LeadScore {
	score := valuePoints(c.Value) + statusPoints(c.Status) + recencyPoints(c.LastContact, now)

	if hasText(c.Email) && hasText(c.Phone) && hasText(c.Company) {
		score += 20
	}

	score = max(0, min(100, score))
	return LeadScore{Score: score, Level: LevelFor(score)}
}

// LevelFor maps a clamped score to its temperature bucket
func LevelFor(score int) LeadLevel {
	switch {
	case score >= 80:
		return LeadLevelBoiling
	case score >= 60:
		return LeadLevelHot
	case score >= 30:
		return LeadLevelWarm
	default:
		return LeadLevelCold
	}
}

func valuePoints(v decimal.Decimal) int {
	switch {
	case v.GreaterThan(valueTierHigh):
		return 30
	case v.GreaterThan(valueTierMid):
		return 20
	case v.GreaterThan(valueTierLow):
		return 10
	default:
		return 0
	}
}

func statusPoints(s ClientStatus) int {
	switch s {
	case ClientStatusNegotiation:
		return 30
	case ClientStatusActive:
		return 20
	case ClientStatusLead:
		return 10
	default:
		return 0
	}
}

// recencyPoints scores whole days since the last contact. A contact in the
// future counts as today; a missing contact date scores nothing.
func recencyPoints(lastContact, now time.Time) int {
	if lastContact.IsZero() {
		return 0
	}
	days := int(now.Sub(lastContact) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	switch {
	case days <= 3:
		return 20
	case days <= 7:
		return 10
	case days > 30:
		return -10
	default:
		return 0
	}
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}
