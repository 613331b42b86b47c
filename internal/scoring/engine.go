// Package scoring implements the rule-based account health engine: a pure
// function from a profile snapshot to a bounded score, letter grade, and a
// deduplicated top-issue summary. It performs no I/O and never reads the
// clock; callers pass "now" explicitly so results are reproducible.
package scoring

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/accountdoctor/accountdoctor/internal/models"
)

// ErrInvalidInput marks a snapshot whose required counters are corrupt
// (negative follower/following/post counts). It signals an upstream data
// problem, not a low score, and is raised before any rule runs.
var ErrInvalidInput = errors.New("invalid profile snapshot")

// noActivityDays stands in for "never posted" in day-difference math.
const noActivityDays = 999

// Config tunes the parts of the rule set that product may want to change
// without touching rule logic.
type Config struct {
	BioKeywords []string
	FillerTips  []string
}

// Engine evaluates snapshots against the fixed rule set.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine, filling in default keyword and filler lists
// for any left empty.
func NewEngine(cfg Config) *Engine {
	if len(cfg.BioKeywords) == 0 {
		cfg.BioKeywords = DefaultBioKeywords
	}
	if len(cfg.FillerTips) == 0 {
		cfg.FillerTips = DefaultFillerTips
	}
	return &Engine{cfg: cfg}
}

// profileStats holds the derived numbers the rules consume, computed once
// over the pinned-filtered post list.
type profileStats struct {
	scoredPosts        int
	daysSinceLastPost  int
	postsInLast30Days  int
	avgHashtagsPerPost float64
	locationTagRate    float64
}

// dimensionOrder is the fixed order dimensions are summarized in.
var dimensionOrder = []models.Dimension{
	models.DimensionActivity,
	models.DimensionProfileIntegrity,
	models.DimensionOperations,
	models.DimensionHealth,
}

var dimensionTitles = map[models.Dimension]string{
	models.DimensionActivity:         "Activity",
	models.DimensionProfileIntegrity: "Profile",
	models.DimensionOperations:       "Operations",
	models.DimensionHealth:           "Health",
}

// Evaluate runs the full rule set against a snapshot. Identical inputs yield
// identical results. The only error path is ErrInvalidInput; degraded data
// (missing bio, avatar, timestamps) is scored as worst case, never rejected.
func (e *Engine) Evaluate(snapshot models.ProfileSnapshot, now time.Time) (*models.AuditResult, error) {
	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}

	stats := computeStats(snapshot.RecentPosts, now)

	var deductions []models.Deduction
	checks := []*models.Deduction{
		e.activityTier(snapshot, stats),
		e.slowContentPace(snapshot, stats),
		e.missingAvatar(snapshot),
		e.missingLink(snapshot),
		e.bioQuality(snapshot),
		e.hashtagUsage(stats),
		e.locationUsage(stats),
		e.followRatio(snapshot),
	}
	for _, d := range checks {
		if d != nil {
			deductions = append(deductions, *d)
		}
	}

	total := 0
	for _, d := range deductions {
		total += d.Penalty
	}

	score := 100 - total
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &models.AuditResult{
		Score:      score,
		Grade:      GradeFor(score),
		Deductions: deductions,
		TopIssues:  e.topIssues(deductions),
		Summary:    e.summarize(score, deductions),
	}, nil
}

func validateSnapshot(snapshot models.ProfileSnapshot) error {
	if snapshot.FollowerCount < 0 {
		return fmt.Errorf("%w: follower count %d", ErrInvalidInput, snapshot.FollowerCount)
	}
	if snapshot.FollowingCount < 0 {
		return fmt.Errorf("%w: following count %d", ErrInvalidInput, snapshot.FollowingCount)
	}
	if snapshot.PostCount < 0 {
		return fmt.Errorf("%w: post count %d", ErrInvalidInput, snapshot.PostCount)
	}
	return nil
}

// computeStats derives the rule inputs from the post list. Pinned posts are
// dropped entirely: they do not reflect current behavior. Posts without a
// parseable timestamp stay in count-based math (hashtags, locations) but are
// excluded from all date math.
func computeStats(posts []models.Post, now time.Time) profileStats {
	var scored []models.Post
	for _, p := range posts {
		if !p.IsPinned {
			scored = append(scored, p)
		}
	}

	var dated []models.Post
	for _, p := range scored {
		if p.PublishedAt != nil {
			dated = append(dated, p)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].PublishedAt.After(*dated[j].PublishedAt)
	})

	stats := profileStats{
		scoredPosts:       len(scored),
		daysSinceLastPost: noActivityDays,
	}

	if len(dated) > 0 {
		stats.daysSinceLastPost = int(now.Sub(*dated[0].PublishedAt).Hours() / 24)
		cutoff := now.AddDate(0, 0, -30)
		for _, p := range dated {
			if p.PublishedAt.After(cutoff) {
				stats.postsInLast30Days++
			}
		}
	}

	if len(scored) > 0 {
		hashtags := 0
		located := 0
		for _, p := range scored {
			hashtags += len(p.Hashtags)
			if p.LocationTag != "" {
				located++
			}
		}
		stats.avgHashtagsPerPost = float64(hashtags) / float64(len(scored))
		stats.locationTagRate = float64(located) / float64(len(scored))
	}

	return stats
}

// GradeFor maps a score to its letter band. Boundaries are inclusive on the
// lower bound: 90/75/60.
func GradeFor(score int) models.Grade {
	switch {
	case score >= 90:
		return models.GradeExcellent
	case score >= 75:
		return models.GradeGood
	case score >= 60:
		return models.GradeNeedsWork
	default:
		return models.GradeWarning
	}
}

// topIssues picks the largest-penalty deduction per dimension, in fixed
// dimension order, and pads with filler tips so the list is always exactly
// three entries. Penalty ties keep the earlier-evaluated deduction.
func (e *Engine) topIssues(deductions []models.Deduction) []string {
	issues := make([]string, 0, 3)

	for _, dim := range dimensionOrder {
		if len(issues) == 3 {
			break
		}
		var top *models.Deduction
		for i := range deductions {
			d := &deductions[i]
			if d.Dimension != dim {
				continue
			}
			if top == nil || d.Penalty > top.Penalty {
				top = d
			}
		}
		if top != nil {
			issues = append(issues, fmt.Sprintf("%s: %s", dimensionTitles[dim], top.Remediation))
		}
	}

	for _, tip := range e.cfg.FillerTips {
		if len(issues) == 3 {
			break
		}
		issues = append(issues, tip)
	}

	return issues
}

var severityRank = map[models.Severity]int{
	models.SeverityHigh:   3,
	models.SeverityMedium: 2,
	models.SeverityLow:    1,
}

// summarize produces the one-line headline for the audit. In the needs-work
// band it names the single worst deduction; the other bands use fixed copy.
func (e *Engine) summarize(score int, deductions []models.Deduction) string {
	switch {
	case score >= 90:
		return "This account is in great shape. Keep the momentum going."
	case score >= 75:
		return "A solid foundation with a few gaps worth closing."
	case score >= 60:
		if worst := worstDeduction(deductions); worst != nil {
			return fmt.Sprintf("%s is the biggest thing holding this account back.", worst.Label)
		}
		return "This account needs some focused work."
	default:
		return "This account needs urgent attention across several areas."
	}
}

// worstDeduction orders by severity, then penalty, then evaluation order.
func worstDeduction(deductions []models.Deduction) *models.Deduction {
	var worst *models.Deduction
	for i := range deductions {
		d := &deductions[i]
		if worst == nil {
			worst = d
			continue
		}
		if severityRank[d.Severity] > severityRank[worst.Severity] {
			worst = d
			continue
		}
		if severityRank[d.Severity] == severityRank[worst.Severity] && d.Penalty > worst.Penalty {
			worst = d
		}
	}
	return worst
}
