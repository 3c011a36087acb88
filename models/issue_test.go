package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryValid(t *testing.T) {
	for _, c := range []IssueCategory{Pothole, Garbage, Water, Electricity, Other} {
		assert.True(t, c.Valid(), "%s should be a valid category", c)
	}
	assert.False(t, IssueCategory("flooding").Valid())
	assert.False(t, IssueCategory("").Valid())
}

func TestStatusValid(t *testing.T) {
	for _, s := range []IssueStatus{Pending, InProgress, Resolved} {
		assert.True(t, s.Valid(), "%s should be a valid status", s)
	}
	assert.False(t, IssueStatus("closed").Valid())
}

func TestCanTransitionRejectsUnknownStates(t *testing.T) {
	assert.False(t, CanTransition(Pending, "closed"))
	assert.False(t, CanTransition("archived", Pending))
}

func TestFilterMatches(t *testing.T) {
	issue := Issue{
		Title:       "Deep Pothole on Elm Street",
		Description: "Front axle deep, right before the crossing.",
		Category:    Pothole,
		Status:      Pending,
	}

	cases := []struct {
		name   string
		filter IssueFilter
		match  bool
	}{
		{name: "empty filter", filter: IssueFilter{}, match: true},
		{name: "category match", filter: IssueFilter{Category: "pothole"}, match: true},
		{name: "category mismatch", filter: IssueFilter{Category: "garbage"}, match: false},
		{name: "status match", filter: IssueFilter{Status: "pending"}, match: true},
		{name: "status mismatch", filter: IssueFilter{Status: "resolved"}, match: false},
		{name: "search in title case-insensitive", filter: IssueFilter{Search: "POTHOLE"}, match: true},
		{name: "search in description", filter: IssueFilter{Search: "axle"}, match: true},
		{name: "search miss", filter: IssueFilter{Search: "graffiti"}, match: false},
		{name: "conjunction all match", filter: IssueFilter{Category: "pothole", Status: "pending", Search: "elm"}, match: true},
		{name: "conjunction one mismatch", filter: IssueFilter{Category: "pothole", Status: "resolved", Search: "elm"}, match: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.match, tc.filter.Matches(issue))
		})
	}
}

func TestFilterSearchIsLiteral(t *testing.T) {
	issue := Issue{
		Title:       "Water main burst (hydrant 1+1)",
		Description: "Corner of 3rd and Pine.",
	}

	assert.True(t, IssueFilter{Search: "(hydrant"}.Matches(issue))
	assert.True(t, IssueFilter{Search: "1+1"}.Matches(issue))
	assert.False(t, IssueFilter{Search: "11"}.Matches(issue), "metacharacters never act as a pattern")
}
