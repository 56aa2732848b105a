package crm

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestScoreLead(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	daysAgo := func(d int) time.Time { return now.Add(-time.Duration(d) * 24 * time.Hour) }

	tests := []struct {
		name      string
		client    Client
		wantScore int
		wantLevel LeadLevel
	}{
		{
			name: "hot negotiation with complete data is boiling",
			client: Client{
				Value:       decimal.NewFromInt(1_200_000),
				Status:      ClientStatusNegotiation,
				LastContact: now,
				Email:       "ceo@acme.test",
				Phone:       "+1 555 0100",
				Company:     "Acme",
			},
			wantScore: 100,
			wantLevel: LeadLevelBoiling,
		},
		{
			name: "value tier boundaries are strict",
			client: Client{
				Value:  decimal.NewFromInt(1_000_000),
				Status: ClientStatusCompleted,
			},
			wantScore: 20,
			wantLevel: LeadLevelCold,
		},
		{
			name: "mid value active contacted this week",
			client: Client{
				Value:       decimal.NewFromInt(500_001),
				Status:      ClientStatusActive,
				LastContact: daysAgo(5),
			},
			wantScore: 50,
			wantLevel: LeadLevelWarm,
		},
		{
			name: "stale lost lead clamps at zero",
			client: Client{
				Value:       decimal.NewFromInt(-5_000),
				Status:      ClientStatusLost,
				LastContact: daysAgo(90),
			},
			wantScore: 0,
			wantLevel: LeadLevelCold,
		},
		{
			name: "stale lead loses points",
			client: Client{
				Value:       decimal.NewFromInt(150_000),
				Status:      ClientStatusLead,
				LastContact: daysAgo(31),
			},
			wantScore: 10,
			wantLevel: LeadLevelCold,
		},
		{
			name: "thirty days is neither recent nor stale",
			client: Client{
				Status:      ClientStatusLead,
				LastContact: daysAgo(30),
			},
			wantScore: 10,
			wantLevel: LeadLevelCold,
		},
		{
			name: "future contact date counts as today",
			client: Client{
				Status:      ClientStatusNegotiation,
				LastContact: now.Add(48 * time.Hour),
			},
			wantScore: 50,
			wantLevel: LeadLevelWarm,
		},
		{
			name: "blank contact fields do not count as complete",
			client: Client{
				Status:  ClientStatusActive,
				Email:   "a@b.test",
				Phone:   "   ",
				Company: "Acme",
			},
			wantScore: 20,
			wantLevel: LeadLevelCold,
		},
		{
			name: "hot band",
			client: Client{
				Value:       decimal.NewFromInt(600_000),
				Status:      ClientStatusActive,
				LastContact: daysAgo(3),
			},
			wantScore: 60,
			wantLevel: LeadLevelHot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreLead(&tt.client, now)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantLevel, got.Level)
		})
	}
}

func TestScoreLead_AlwaysInRange(t *testing.T) {
	now := time.Now()
	values := []int64{-1_000_000_000, -1, 0, 100_001, 500_001, 1_000_001, 1_000_000_000_000}
	statuses := []ClientStatus{ClientStatusLead, ClientStatusNegotiation, ClientStatusActive, ClientStatusCompleted, ClientStatusLost, "bogus"}
	contacts := []time.Time{{}, now.AddDate(10, 0, 0), now, now.AddDate(0, 0, -6), now.AddDate(-5, 0, 0)}

	for _, v := range values {
		for _, s := range statuses {
			for _, lc := range contacts {
				c := &Client{Value: decimal.NewFromInt(v), Status: s, LastContact: lc, Email: "x", Phone: "y", Company: "z"}
				got := ScoreLead(c, now)
				assert.GreaterOrEqual(t, got.Score, 0)
				assert.LessOrEqual(t, got.Score, 100)
				assert.Equal(t, LevelFor(got.Score), got.Level)
			}
		}
	}
}

func TestLevelFor_Thresholds(t *testing.T) {
	tests := []struct {
		score int
		want  LeadLevel
	}{
		{100, LeadLevelBoiling},
		{80, LeadLevelBoiling},
		{79, LeadLevelHot},
		{60, LeadLevelHot},
		{59, LeadLevelWarm},
		{30, LeadLevelWarm},
		{29, LeadLevelCold},
		{0, LeadLevelCold},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.score), "score %d", tt.score)
	}
}
