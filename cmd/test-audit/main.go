package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/accountdoctor/accountdoctor/internal/models"
	"github.com/accountdoctor/accountdoctor/internal/scoring"
)

// Runs the scoring engine over a few canned snapshots and prints the results,
// so rule changes can be eyeballed without scraping anything.
func main() {
	engine := scoring.NewEngine(scoring.Config{})
	now := time.Now()

	for _, fixture := range fixtures(now) {
		result, err := engine.Evaluate(fixture.snapshot, now)
		if err != nil {
			fmt.Fprintf(os.Stderr, "evaluate %s: %v\n", fixture.name, err)
			os.Exit(1)
		}
		printResult(fixture.name, result)
	}
}

type fixture struct {
	name     string
	snapshot models.ProfileSnapshot
}

func fixtures(now time.Time) []fixture {
	recent := now.AddDate(0, 0, -2)
	lastMonth := now.AddDate(0, 0, -45)

	return []fixture{
		{
			name: "thriving cafe",
			snapshot: models.ProfileSnapshot{
				Username:          "corner_cafe",
				Biography:         "Neighborhood cafe pouring single-origin espresso since 2019",
				ProfilePictureURL: "https://cdn.example.com/avatars/corner_cafe.jpg",
				ExternalURL:       "https://cornercafe.example.com",
				FollowerCount:     4200,
				FollowingCount:    310,
				PostCount:         240,
				RecentPosts: []models.Post{
					{PublishedAt: &recent, Hashtags: []string{"coffee", "espresso", "latteart"}, LocationTag: "Lisbon"},
					{PublishedAt: &recent, Hashtags: []string{"coffee", "brunch", "cafe"}, LocationTag: "Lisbon"},
					{PublishedAt: &recent, Hashtags: []string{"coffee", "pastry", "cafe"}, LocationTag: "Lisbon"},
				},
			},
		},
		{
			name: "abandoned boutique",
			snapshot: models.ProfileSnapshot{
				Username:       "dusty_boutique",
				Biography:      "stuff",
				FollowerCount:  150,
				FollowingCount: 1800,
				PostCount:      60,
				RecentPosts: []models.Post{
					{PublishedAt: &lastMonth},
					{PublishedAt: &lastMonth},
					{PublishedAt: &lastMonth},
				},
			},
		},
		{
			name:     "brand new account",
			snapshot: models.ProfileSnapshot{Username: "just_signed_up"},
		},
	}
}

func printResult(name string, result *models.AuditResult) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Printf("AUDIT: %s\n", name)
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Score: %d/100 (%s)\n", result.Score, result.Grade)
	fmt.Printf("Summary: %s\n", result.Summary)

	if len(result.Deductions) > 0 {
		fmt.Println("\nDeductions:")
		for _, d := range result.Deductions {
			fmt.Printf("   -%2d  [%s/%s] %s\n", d.Penalty, d.Dimension, d.Severity, d.Label)
		}
	}

	fmt.Println("\nTop issues:")
	for i, issue := range result.TopIssues {
		fmt.Printf("   %d. %s\n", i+1, issue)
	}

	if data, err := json.MarshalIndent(result, "", "  "); err == nil {
		fmt.Printf("\nJSON payload (%d bytes)\n", len(data))
	}
}
