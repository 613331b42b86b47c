package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/accountdoctor/accountdoctor/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const apifyBaseURL = "https://api.apify.com/v2"

// ApifySource fetches Instagram profiles through an Apify actor's
// run-sync endpoint.
type ApifySource struct {
	token   string
	actorID string
	client  *resty.Client
}

type apifyRunInput struct {
	Usernames    []string `json:"usernames"`
	ResultsLimit int      `json:"resultsLimit"`
}

type apifyProfileItem struct {
	Username       string          `json:"username"`
	Biography      string          `json:"biography"`
	ProfilePicURL  string          `json:"profilePicUrl"`
	ExternalURL    string          `json:"externalUrl"`
	FollowersCount *int            `json:"followersCount"`
	FollowsCount   *int            `json:"followsCount"`
	PostsCount     *int            `json:"postsCount"`
	LatestPosts    []apifyPostItem `json:"latestPosts"`
	Error          string          `json:"error"`
}

type apifyPostItem struct {
	Timestamp     string   `json:"timestamp"`
	LikesCount    int      `json:"likesCount"`
	CommentsCount int      `json:"commentsCount"`
	Hashtags      []string `json:"hashtags"`
	LocationName  string   `json:"locationName"`
	IsPinned      bool     `json:"isPinned"`
}

// NewApifySource creates an Apify-backed profile provider.
func NewApifySource(token, actorID string) *ApifySource {
	return &ApifySource{
		token:   token,
		actorID: actorID,
		client: resty.New().
			SetTimeout(120 * time.Second).
			SetHeader("User-Agent", "AccountDoctor/1.0"),
	}
}

// Ensure ApifySource implements ProfileProvider
var _ ProfileProvider = (*ApifySource)(nil)

func (a *ApifySource) GetName() string {
	return "apify"
}

func (a *ApifySource) IsEnabled() bool {
	return a.token != ""
}

// FetchProfile runs the actor synchronously and normalizes the first dataset
// item into a ProfileSnapshot.
func (a *ApifySource) FetchProfile(ctx context.Context, username string) (*models.ProfileSnapshot, []byte, error) {
	if !a.IsEnabled() {
		return nil, nil, fmt.Errorf("apify source disabled - missing token")
	}

	runURL := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		apifyBaseURL, url.PathEscape(a.actorID), url.QueryEscape(a.token))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(apifyRunInput{Usernames: []string{username}, ResultsLimit: 12}).
		Post(runURL)

	if err != nil {
		return nil, nil, fmt.Errorf("apify run failed: %w", err)
	}

	switch resp.StatusCode() {
	case 200, 201:
	case 429:
		return nil, nil, ErrRateLimited
	default:
		return nil, nil, fmt.Errorf("apify API returned status %d", resp.StatusCode())
	}

	var items []apifyProfileItem
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, nil, fmt.Errorf("failed to decode apify response: %w", err)
	}

	if len(items) == 0 {
		return nil, nil, ErrProfileNotFound
	}

	item := items[0]
	if item.Error != "" {
		if strings.Contains(strings.ToLower(item.Error), "not found") {
			return nil, nil, ErrProfileNotFound
		}
		return nil, nil, fmt.Errorf("apify actor error: %s", item.Error)
	}

	snapshot := normalizeProfile(item, time.Now())
	logrus.Infof("Scraped profile %s: %d followers, %d recent posts",
		username, snapshot.FollowerCount, len(snapshot.RecentPosts))

	return snapshot, resp.Body(), nil
}

// normalizeProfile maps a raw actor item onto the engine's input contract.
// Missing counters become -1 rather than 0 so the engine rejects them as
// invalid input instead of silently scoring garbage.
func normalizeProfile(item apifyProfileItem, takenAt time.Time) *models.ProfileSnapshot {
	snapshot := &models.ProfileSnapshot{
		Username:          item.Username,
		Biography:         item.Biography,
		ProfilePictureURL: item.ProfilePicURL,
		ExternalURL:       item.ExternalURL,
		FollowerCount:     intOrInvalid(item.FollowersCount),
		FollowingCount:    intOrInvalid(item.FollowsCount),
		PostCount:         intOrInvalid(item.PostsCount),
		TakenAt:           takenAt,
	}

	for _, raw := range item.LatestPosts {
		post := models.Post{
			LikeCount:    raw.LikesCount,
			CommentCount: raw.CommentsCount,
			Hashtags:     raw.Hashtags,
			LocationTag:  raw.LocationName,
			IsPinned:     raw.IsPinned,
		}
		if ts, err := time.Parse(time.RFC3339, raw.Timestamp); err == nil {
			post.PublishedAt = &ts
		} else if raw.Timestamp != "" {
			logrus.Debugf("Unparseable post timestamp %q for %s", raw.Timestamp, item.Username)
		}
		snapshot.RecentPosts = append(snapshot.RecentPosts, post)
	}

	return snapshot
}

func intOrInvalid(value *int) int {
	if value == nil {
		return -1
	}
	return *value
}
