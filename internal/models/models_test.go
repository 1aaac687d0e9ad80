package models

import "testing"

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID == "" {
		t.Fatal("expected base model ID to be generated")
	}
}

func TestBaseModelBeforeCreateKeepsExistingID(t *testing.T) {
	base := BaseModel{ID: "fixed"}
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID != "fixed" {
		t.Fatalf("expected id to be preserved, got %q", base.ID)
	}
}

func TestEmbeddedModelsUseBaseBeforeCreate(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"user", func() *BaseModel { m := &User{}; return &m.BaseModel }},
		{"achievement", func() *BaseModel { m := &Achievement{}; return &m.BaseModel }},
		{"user_achievement", func() *BaseModel { m := &UserAchievement{}; return &m.BaseModel }},
		{"leaderboard_entry", func() *BaseModel { m := &LeaderboardEntry{}; return &m.BaseModel }},
		{"notification", func() *BaseModel { m := &Notification{}; return &m.BaseModel }},
		{"review", func() *BaseModel { m := &Review{}; return &m.BaseModel }},
		{"comment", func() *BaseModel { m := &Comment{}; return &m.BaseModel }},
		{"like", func() *BaseModel { m := &Like{}; return &m.BaseModel }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := tc.model()
			if err := base.BeforeCreate(nil); err != nil {
				t.Fatalf("before create: %v", err)
			}
			if base.ID == "" {
				t.Fatalf("expected %s id to be generated", tc.name)
			}
		})
	}
}

func TestLevelForXPBoundaries(t *testing.T) {
	cases := []struct {
		xp    int64
		level int
	}{
		{0, 1},
		{XPPerLevel - 1, 1},
		{XPPerLevel, 2},
		{XPPerLevel + 1, 2},
		{10*XPPerLevel - 1, 10},
		{10 * XPPerLevel, 11},
		{-5, 1},
	}

	for _, tc := range cases {
		if got := LevelForXP(tc.xp); got != tc.level {
			t.Fatalf("LevelForXP(%d) = %d, want %d", tc.xp, got, tc.level)
		}
	}
}

func TestUserAddXP(t *testing.T) {
	user := &User{Level: 1}

	user.AddXP(99)
	if user.XP != 99 || user.Level != 1 {
		t.Fatalf("unexpected state after 99 xp: xp=%d level=%d", user.XP, user.Level)
	}

	user.AddXP(1)
	if user.XP != 100 || user.Level != 2 {
		t.Fatalf("unexpected state after 100 xp: xp=%d level=%d", user.XP, user.Level)
	}

	user.AddXP(-50)
	if user.XP != 100 {
		t.Fatalf("negative amounts must be ignored, got xp=%d", user.XP)
	}
}

func TestUserHasBadge(t *testing.T) {
	user := &User{Badges: []string{"Contributor"}}
	if !user.HasBadge("Contributor") {
		t.Fatal("expected Contributor badge")
	}
	if user.HasBadge("Influencer") {
		t.Fatal("did not expect Influencer badge")
	}
}

func TestEnumHelpers(t *testing.T) {
	for _, period := range []string{PeriodWeekly, PeriodMonthly, PeriodAllTime} {
		if !IsValidPeriod(period) {
			t.Fatalf("expected %q to be valid", period)
		}
	}
	if IsValidPeriod("daily") {
		t.Fatal("daily is not a leaderboard period")
	}

	if !IsValidEntityType(EntityReview) || IsValidEntityType("game") {
		t.Fatal("unexpected entity type validation")
	}
	if !IsValidRarity(RarityLegendary) || IsValidRarity("legendary") {
		t.Fatal("rarity validation must be exact")
	}
}
