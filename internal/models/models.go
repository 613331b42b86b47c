package models

import "time"

// ProfileSnapshot is a point-in-time view of a public Instagram profile,
// normalized by the scraper before it reaches the scoring engine.
type ProfileSnapshot struct {
	Username          string    `json:"username"`
	Biography         string    `json:"biography"`
	ProfilePictureURL string    `json:"profile_picture_url"` // empty when the account has no avatar
	ExternalURL       string    `json:"external_url"`        // empty when no link in bio
	FollowerCount     int       `json:"follower_count"`
	FollowingCount    int       `json:"following_count"`
	PostCount         int       `json:"post_count"`
	RecentPosts       []Post    `json:"recent_posts"`
	TakenAt           time.Time `json:"taken_at"`
}

// Post is a single scraped post belonging to a snapshot.
type Post struct {
	PublishedAt  *time.Time `json:"published_at"` // nil when the scraper could not parse a timestamp
	LikeCount    int        `json:"like_count"`
	CommentCount int        `json:"comment_count"`
	Hashtags     []string   `json:"hashtags"`
	LocationTag  string     `json:"location_tag"` // empty when the post has no geotag
	IsPinned     bool       `json:"is_pinned"`
}

// Severity buckets a deduction by how badly it hurts the account.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Dimension groups deductions into one of four fixed scoring categories.
type Dimension string

const (
	DimensionActivity         Dimension = "activity"
	DimensionProfileIntegrity Dimension = "profile_integrity"
	DimensionOperations       Dimension = "operations"
	DimensionHealth           Dimension = "health"
)

// Grade is the letter band derived from the numeric score.
type Grade string

const (
	GradeExcellent Grade = "excellent"
	GradeGood      Grade = "good"
	GradeNeedsWork Grade = "needs_work"
	GradeWarning   Grade = "warning"
)

// Deduction is a single triggered penalty. Penalty is stored as a positive
// cost, not a signed delta.
type Deduction struct {
	Label       string    `json:"label"`
	Penalty     int       `json:"penalty"`
	Severity    Severity  `json:"severity"`
	Dimension   Dimension `json:"dimension"`
	Remediation string    `json:"remediation"`
}

// AuditResult is the scoring engine's output for one snapshot.
type AuditResult struct {
	Score      int         `json:"score"`
	Grade      Grade       `json:"grade"`
	Deductions []Deduction `json:"deductions"` // stable evaluation order
	TopIssues  []string    `json:"top_issues"` // always exactly 3 entries
	Summary    string      `json:"summary"`
}

// AuditRecord is a persisted audit: the scoring result plus the optional
// AI strategy plan, keyed by a generated ID.
type AuditRecord struct {
	ID              string        `json:"id"`
	Username        string        `json:"username"`
	Result          AuditResult   `json:"result"`
	Strategy        *StrategyPlan `json:"strategy,omitempty"`
	SnapshotTakenAt time.Time     `json:"snapshot_taken_at"`
	CreatedAt       time.Time     `json:"created_at"`
}

// ContentPillar is one recurring content theme in a strategy plan.
type ContentPillar struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	ExampleCaption string `json:"example_caption"`
}

// StrategyPlan is the AI-generated branding and content plan attached to an
// audit. Best-effort: audits persist without one when generation fails.
type StrategyPlan struct {
	Positioning    string          `json:"positioning"`
	ContentPillars []ContentPillar `json:"content_pillars"`
	PostIdeas      []string        `json:"post_ideas"`
	BioRewrite     string          `json:"bio_rewrite"`
}

// WatchedAccount is an account the scheduler re-audits periodically.
type WatchedAccount struct {
	Username  string    `json:"username"`
	AddedAt   time.Time `json:"added_at"`
	LastScore int       `json:"last_score"`
	LastGrade string    `json:"last_grade"`
}

// Alert is an urgent notification about a watched account, sent when a
// scheduled refresh detects a grade drop.
type Alert struct {
	Username      string    `json:"username"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	PreviousScore int       `json:"previous_score"`
	CurrentScore  int       `json:"current_score"`
	PreviousGrade string    `json:"previous_grade"`
	CurrentGrade  string    `json:"current_grade"`
	CreatedAt     time.Time `json:"created_at"`
}
