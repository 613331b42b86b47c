package scoring

import (
	"fmt"
	"strings"

	"github.com/accountdoctor/accountdoctor/internal/models"
)

// DefaultBioKeywords is the industry vocabulary used to judge whether a bio
// tells visitors what kind of business the account is. Case-insensitive
// substring match. Override via Config.BioKeywords (BIO_KEYWORDS env).
var DefaultBioKeywords = []string{
	"shop", "store", "studio", "cafe", "coffee", "restaurant", "bakery",
	"salon", "barber", "gym", "fitness", "yoga", "boutique", "brand",
	"agency", "bar", "spa", "hotel", "bookings", "official",
}

// DefaultFillerTips pads the top-issues summary up to its fixed length of
// three entries when fewer than three dimensions triggered a deduction.
var DefaultFillerTips = []string{
	"Keep posting consistently and reply to comments within a day.",
	"Use Stories or Reels weekly to stay visible between feed posts.",
	"Refresh your pinned posts so first-time visitors see your best work.",
}

// placeholderAvatarMarkers identify stock or default profile pictures. The
// last entry is Instagram's well-known default-avatar asset id.
var placeholderAvatarMarkers = []string{
	"default_profile",
	"anonymous_profile",
	"placeholder",
	"44884218_345707102882519",
}

// activityTier evaluates the tiered recency family. The tiers are mutually
// exclusive: only the worst applicable one fires. Accounts that never posted
// at all are new rather than ghosted, so the family is skipped for them.
func (e *Engine) activityTier(snapshot models.ProfileSnapshot, stats profileStats) *models.Deduction {
	if snapshot.PostCount == 0 {
		return nil
	}

	if stats.daysSinceLastPost > 30 {
		return &models.Deduction{
			Label:       "Ghost Account",
			Penalty:     30,
			Severity:    models.SeverityHigh,
			Dimension:   models.DimensionActivity,
			Remediation: "No posts in over a month. Publish something this week to show the account is alive.",
		}
	}

	if stats.daysSinceLastPost > 7 {
		return &models.Deduction{
			Label:       "Fading Visibility",
			Penalty:     15,
			Severity:    models.SeverityMedium,
			Dimension:   models.DimensionActivity,
			Remediation: "Over a week since the last post. Get back to a regular rhythm before reach decays.",
		}
	}

	return nil
}

// slowContentPace flags previously-active accounts that have slowed down.
// Deliberately independent of the recency tiers above, so it can stack with
// Ghost Account or Fading Visibility. It needs at least one scraped post to
// measure; an empty feed is the Activity tiers' territory.
func (e *Engine) slowContentPace(snapshot models.ProfileSnapshot, stats profileStats) *models.Deduction {
	if stats.scoredPosts == 0 || stats.postsInLast30Days >= 3 || snapshot.PostCount <= 5 {
		return nil
	}

	return &models.Deduction{
		Label:       "Slow Content Pace",
		Penalty:     10,
		Severity:    models.SeverityMedium,
		Dimension:   models.DimensionActivity,
		Remediation: "Fewer than three posts in the last month. Aim for two or three posts per week.",
	}
}

func (e *Engine) missingAvatar(snapshot models.ProfileSnapshot) *models.Deduction {
	if !isPlaceholderAvatar(snapshot.ProfilePictureURL) {
		return nil
	}

	return &models.Deduction{
		Label:       "Missing Profile Photo",
		Penalty:     20,
		Severity:    models.SeverityHigh,
		Dimension:   models.DimensionProfileIntegrity,
		Remediation: "Upload a real profile photo. A default avatar reads as abandoned or fake.",
	}
}

func (e *Engine) missingLink(snapshot models.ProfileSnapshot) *models.Deduction {
	if strings.TrimSpace(snapshot.ExternalURL) != "" {
		return nil
	}

	return &models.Deduction{
		Label:       "No Link in Bio",
		Penalty:     15,
		Severity:    models.SeverityHigh,
		Dimension:   models.DimensionProfileIntegrity,
		Remediation: "Add a link in bio so visitors can reach your site, menu, or booking page.",
	}
}

// bioQuality applies at most one of two mutually exclusive checks: a bio that
// is missing or too short, or a long-enough bio with no industry keyword.
func (e *Engine) bioQuality(snapshot models.ProfileSnapshot) *models.Deduction {
	bio := strings.TrimSpace(snapshot.Biography)

	if len(bio) < 10 {
		return &models.Deduction{
			Label:       "Thin Bio",
			Penalty:     10,
			Severity:    models.SeverityMedium,
			Dimension:   models.DimensionProfileIntegrity,
			Remediation: "Write at least a sentence about who you are and what you offer.",
		}
	}

	lowered := strings.ToLower(bio)
	for _, keyword := range e.cfg.BioKeywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return nil
		}
	}

	return &models.Deduction{
		Label:       "Unclear Positioning",
		Penalty:     5,
		Severity:    models.SeverityLow,
		Dimension:   models.DimensionProfileIntegrity,
		Remediation: "Say what kind of business this is so new visitors get it instantly.",
	}
}

// hashtagUsage needs at least one scored post; an account with no posts has
// nothing to measure and is already handled by the Activity rules.
func (e *Engine) hashtagUsage(stats profileStats) *models.Deduction {
	if stats.scoredPosts == 0 || stats.avgHashtagsPerPost >= 3 {
		return nil
	}

	return &models.Deduction{
		Label:       "Weak Hashtag Usage",
		Penalty:     5,
		Severity:    models.SeverityLow,
		Dimension:   models.DimensionOperations,
		Remediation: "Use at least three relevant hashtags per post to stay discoverable.",
	}
}

func (e *Engine) locationUsage(stats profileStats) *models.Deduction {
	if stats.scoredPosts < 3 || stats.locationTagRate >= 0.3 {
		return nil
	}

	return &models.Deduction{
		Label:       "Missing Location Tags",
		Penalty:     5,
		Severity:    models.SeverityLow,
		Dimension:   models.DimensionOperations,
		Remediation: "Tag your location on most posts. Local discovery is free reach.",
	}
}

func (e *Engine) followRatio(snapshot models.ProfileSnapshot) *models.Deduction {
	if snapshot.FollowingCount <= 1000 || snapshot.FollowingCount <= snapshot.FollowerCount {
		return nil
	}

	followers := snapshot.FollowerCount
	if followers < 1 {
		followers = 1
	}
	ratio := float64(snapshot.FollowingCount) / float64(followers)

	return &models.Deduction{
		Label:       fmt.Sprintf("Unbalanced Follow Ratio (%.1f:1)", ratio),
		Penalty:     10,
		Severity:    models.SeverityMedium,
		Dimension:   models.DimensionHealth,
		Remediation: "Unfollow inactive accounts. Following far more people than follow back looks spammy.",
	}
}

func isPlaceholderAvatar(url string) bool {
	if strings.TrimSpace(url) == "" {
		return true
	}
	lowered := strings.ToLower(url)
	for _, marker := range placeholderAvatarMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
