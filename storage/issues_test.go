package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"citizenreport/models"
)

func TestIssueQueryEscapesSearchMetacharacters(t *testing.T) {
	query := issueQuery(models.IssueFilter{Search: "1+1 ("})

	or, ok := query["$or"].([]bson.M)
	require.True(t, ok, "search should produce a title/description $or")
	require.Len(t, or, 2)

	title, ok := or[0]["title"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, `1\+1 \(`, title["$regex"], "the term must match literally, not as a pattern")
	assert.Equal(t, "i", title["$options"])

	description, ok := or[1]["description"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, `1\+1 \(`, description["$regex"])
}

func TestIssueQueryComposesFilters(t *testing.T) {
	query := issueQuery(models.IssueFilter{Category: "pothole", Status: "pending"})

	assert.Equal(t, "pothole", query["category"])
	assert.Equal(t, "pending", query["status"])
	_, hasSearch := query["$or"]
	assert.False(t, hasSearch)

	assert.Empty(t, issueQuery(models.IssueFilter{}))
}
