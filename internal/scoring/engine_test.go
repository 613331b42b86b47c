package scoring

import (
	"testing"
	"time"

	"github.com/accountdoctor/accountdoctor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateEmptyProfileWorkedExample(t *testing.T) {
	// Bare profile: no avatar, no link, no bio, nothing posted, nobody
	// followed. Only the three profile-integrity rules fire.
	snapshot := models.ProfileSnapshot{Username: "ghost_town"}

	result := evaluate(t, snapshot)

	assert.Equal(t, 55, result.Score)
	assert.Equal(t, models.GradeWarning, result.Grade)
	require.Len(t, result.Deductions, 3)
	for _, d := range result.Deductions {
		assert.Equal(t, models.DimensionProfileIntegrity, d.Dimension)
	}
}

func TestEvaluateHealthyProfileScoresFull(t *testing.T) {
	result := evaluate(t, healthySnapshot())

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, models.GradeExcellent, result.Grade)
	assert.Empty(t, result.Deductions)
}

func TestEvaluateScoreClampsAtZero(t *testing.T) {
	// Every rule fires: 30+10+20+15+10+5+5+10 = 105 penalty points.
	snapshot := models.ProfileSnapshot{
		Username:       "worst_case",
		Biography:      "",
		FollowerCount:  50,
		FollowingCount: 2000,
		PostCount:      40,
		RecentPosts: []models.Post{
			postFrom(45),
			postFrom(60),
			postFrom(90),
		},
	}

	result := evaluate(t, snapshot)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, models.GradeWarning, result.Grade)
	assert.Len(t, result.Deductions, 8)

	total := 0
	for _, d := range result.Deductions {
		total += d.Penalty
	}
	assert.Equal(t, 105, total)
}

func TestEvaluateScoreAlwaysBounded(t *testing.T) {
	snapshots := []models.ProfileSnapshot{
		{},
		healthySnapshot(),
		{Username: "x", PostCount: 1000, FollowingCount: 100000},
		{Username: "y", Biography: "short", RecentPosts: []models.Post{postFrom(400)}},
	}

	for _, snapshot := range snapshots {
		result := evaluate(t, snapshot)
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, 100)
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score    int
		expected models.Grade
	}{
		{100, models.GradeExcellent},
		{90, models.GradeExcellent},
		{89, models.GradeGood},
		{75, models.GradeGood},
		{74, models.GradeNeedsWork},
		{60, models.GradeNeedsWork},
		{59, models.GradeWarning},
		{0, models.GradeWarning},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GradeFor(tt.score), "score %d", tt.score)
	}
}

func TestEvaluateRejectsNegativeCounts(t *testing.T) {
	tests := []struct {
		name     string
		snapshot models.ProfileSnapshot
	}{
		{name: "negative followers", snapshot: models.ProfileSnapshot{FollowerCount: -1}},
		{name: "negative following", snapshot: models.ProfileSnapshot{FollowingCount: -5}},
		{name: "negative post count", snapshot: models.ProfileSnapshot{PostCount: -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewEngine(Config{}).Evaluate(tt.snapshot, testNow)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, result, "no partial result on invalid input")
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	snapshot := models.ProfileSnapshot{
		Username:       "repeatable",
		Biography:      "too short",
		FollowerCount:  10,
		FollowingCount: 5000,
		PostCount:      30,
		RecentPosts:    []models.Post{postFrom(12), postFrom(50)},
	}

	engine := NewEngine(Config{})
	first, err := engine.Evaluate(snapshot, testNow)
	require.NoError(t, err)
	second, err := engine.Evaluate(snapshot, testNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluateIgnoresPinnedPosts(t *testing.T) {
	// A fresh pinned post must not rescue a stale account: removing it
	// changes nothing.
	stale := models.ProfileSnapshot{
		Username:          "pinned_over_ghost",
		Biography:         "Tiny ceramics studio in Porto, open Tue-Sat",
		ProfilePictureURL: "https://cdn.example.com/avatars/p.jpg",
		ExternalURL:       "https://studio.example.com",
		FollowerCount:     800,
		FollowingCount:    200,
		PostCount:         60,
		RecentPosts: []models.Post{
			{PublishedAt: daysAgo(1), IsPinned: true, Hashtags: []string{"a", "b", "c", "d", "e"}, LocationTag: "Porto"},
			{PublishedAt: daysAgo(40), Hashtags: []string{"a", "b", "c"}, LocationTag: "Porto"},
			{PublishedAt: daysAgo(55), Hashtags: []string{"a", "b", "c"}, LocationTag: "Porto"},
			{PublishedAt: daysAgo(70), Hashtags: []string{"a", "b", "c"}, LocationTag: "Porto"},
		},
	}

	withPinned := evaluate(t, stale)
	assert.True(t, hasDeduction(withPinned, "Ghost Account"))

	withoutPinned := stale
	withoutPinned.RecentPosts = stale.RecentPosts[1:]
	assert.Equal(t, evaluate(t, withoutPinned), withPinned)
}

func TestEvaluatePostsWithoutDatesStayInCountMath(t *testing.T) {
	// Undated posts are invisible to recency but still drag the hashtag
	// average down.
	snapshot := healthySnapshot()
	snapshot.RecentPosts = []models.Post{
		{PublishedAt: daysAgo(1), Hashtags: []string{"a", "b", "c", "d"}, LocationTag: "Lisbon"},
		{PublishedAt: daysAgo(2), Hashtags: []string{"a", "b", "c", "d"}, LocationTag: "Lisbon"},
		{PublishedAt: nil, Hashtags: nil, LocationTag: "Lisbon"},
		{PublishedAt: nil, Hashtags: nil, LocationTag: "Lisbon"},
	}

	result := evaluate(t, snapshot)

	assert.False(t, hasDeduction(result, "Ghost Account"))
	assert.True(t, hasDeduction(result, "Weak Hashtag Usage"), "average is 8/4 = 2")
}

func TestEvaluateFreshPostNeverLowersScore(t *testing.T) {
	stale := models.ProfileSnapshot{
		Username:       "coming_back",
		Biography:      "Family-run bakery and coffee shop",
		ExternalURL:    "https://bakery.example.com",
		FollowerCount:  900,
		FollowingCount: 100,
		PostCount:      80,
		RecentPosts: []models.Post{
			{PublishedAt: daysAgo(45), Hashtags: []string{"a", "b", "c"}, LocationTag: "Braga"},
			{PublishedAt: daysAgo(60), Hashtags: []string{"a", "b", "c"}, LocationTag: "Braga"},
			{PublishedAt: daysAgo(75), Hashtags: []string{"a", "b", "c"}, LocationTag: "Braga"},
		},
	}

	before := evaluate(t, stale)
	require.True(t, hasDeduction(before, "Ghost Account"))

	revived := stale
	revived.RecentPosts = append([]models.Post{
		{PublishedAt: daysAgo(0), Hashtags: []string{"a", "b", "c"}, LocationTag: "Braga"},
	}, stale.RecentPosts...)

	after := evaluate(t, revived)
	assert.GreaterOrEqual(t, after.Score, before.Score)
}

func TestTopIssuesAlwaysThree(t *testing.T) {
	tests := []struct {
		name     string
		snapshot models.ProfileSnapshot
	}{
		{name: "no issues at all", snapshot: healthySnapshot()},
		{name: "one dimension", snapshot: models.ProfileSnapshot{
			Username:          "just_bio",
			Biography:         "",
			ProfilePictureURL: "https://cdn.example.com/a.jpg",
			ExternalURL:       "https://example.com",
		}},
		{name: "every dimension", snapshot: models.ProfileSnapshot{
			Username:       "all_wrong",
			FollowerCount:  10,
			FollowingCount: 2000,
			PostCount:      40,
			RecentPosts:    []models.Post{postFrom(45), postFrom(60), postFrom(90)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := evaluate(t, tt.snapshot)
			assert.Len(t, result.TopIssues, 3)
		})
	}
}

func TestTopIssuesPadsWithFillerTips(t *testing.T) {
	result := evaluate(t, healthySnapshot())
	assert.Equal(t, DefaultFillerTips, result.TopIssues)
}

func TestTopIssuesPicksWorstPerDimension(t *testing.T) {
	// Profile dimension triggers avatar (20), link (15), and thin bio (10);
	// only the avatar remediation may surface.
	snapshot := models.ProfileSnapshot{Username: "bare"}

	result := evaluate(t, snapshot)

	require.Len(t, result.TopIssues, 3)
	assert.Contains(t, result.TopIssues[0], "Profile: ")
	assert.Contains(t, result.TopIssues[0], "profile photo")
	assert.Equal(t, DefaultFillerTips[0], result.TopIssues[1])
	assert.Equal(t, DefaultFillerTips[1], result.TopIssues[2])
}

func TestTopIssuesFollowDimensionOrder(t *testing.T) {
	snapshot := models.ProfileSnapshot{
		Username:       "all_wrong",
		FollowerCount:  10,
		FollowingCount: 2000,
		PostCount:      40,
		RecentPosts:    []models.Post{postFrom(45), postFrom(60), postFrom(90)},
	}

	result := evaluate(t, snapshot)

	require.Len(t, result.TopIssues, 3)
	assert.Contains(t, result.TopIssues[0], "Activity: ")
	assert.Contains(t, result.TopIssues[1], "Profile: ")
	assert.Contains(t, result.TopIssues[2], "Operations: ")
}

func TestFillerTipsAreInjectable(t *testing.T) {
	tips := []string{"tip one", "tip two", "tip three"}
	engine := NewEngine(Config{FillerTips: tips})

	result, err := engine.Evaluate(healthySnapshot(), testNow)
	require.NoError(t, err)
	assert.Equal(t, tips, result.TopIssues)
}

func TestSummaryByScoreBand(t *testing.T) {
	t.Run("excellent band uses fixed copy", func(t *testing.T) {
		result := evaluate(t, healthySnapshot())
		assert.Equal(t, "This account is in great shape. Keep the momentum going.", result.Summary)
	})

	t.Run("needs-work band names the worst deduction", func(t *testing.T) {
		// Ghost (30, high) alone: score 70, needs work.
		snapshot := healthySnapshot()
		snapshot.RecentPosts = []models.Post{
			{PublishedAt: daysAgo(35), Hashtags: []string{"a", "b", "c"}, LocationTag: "Lisbon"},
			{PublishedAt: daysAgo(20), IsPinned: true},
		}
		snapshot.PostCount = 4 // keeps the pace rule quiet

		result := evaluate(t, snapshot)
		require.Equal(t, models.GradeNeedsWork, result.Grade)
		assert.Equal(t, "Ghost Account is the biggest thing holding this account back.", result.Summary)
	})

	t.Run("warning band uses fixed copy", func(t *testing.T) {
		result := evaluate(t, models.ProfileSnapshot{Username: "bare"})
		require.Equal(t, models.GradeWarning, result.Grade)
		assert.Equal(t, "This account needs urgent attention across several areas.", result.Summary)
	})
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	snapshot := healthySnapshot()
	snapshot.RecentPosts = []models.Post{postFrom(3), postFrom(1), postFrom(2)}
	original := append([]models.Post(nil), snapshot.RecentPosts...)

	_, err := NewEngine(Config{}).Evaluate(snapshot, now)
	require.NoError(t, err)

	assert.Equal(t, original, snapshot.RecentPosts, "engine sorts a copy, not the caller's slice")
}
