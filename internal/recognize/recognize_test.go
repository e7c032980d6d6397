package recognize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerize-dev/ledgerize/internal/model"
)

var coffee = model.Rule{Pattern: "COFFEE", Description: "Morning Coffee", Account: "Expenses:Dining"}

func TestRecognize_Match(t *testing.T) {
	e := model.NewEntry("2021/03/01", "STARBUCKS COFFEE #123", "Assets:Checking", "-4.50")

	assert.True(t, Recognize(e, []model.Rule{coffee}))
	assert.True(t, e.Recognized())
	assert.Equal(t, "Morning Coffee", e.Description)
	assert.Equal(t, "STARBUCKS COFFEE #123", e.Comment)

	postings := e.Postings()
	require.Len(t, postings, 2)
	assert.Equal(t, model.BarePosting{Account: "Expenses:Dining"}, postings[1])
}

func TestRecognize_FirstMatchWins(t *testing.T) {
	rules := []model.Rule{
		{Pattern: "STARBUCKS", Description: "Starbucks", Account: "Expenses:Coffee"},
		coffee,
	}
	e := model.NewEntry("2021/03/01", "STARBUCKS COFFEE #123", "Assets:Checking", "-4.50")

	require.True(t, Recognize(e, rules))
	assert.Equal(t, "Starbucks", e.Description)
	assert.Equal(t, "Expenses:Coffee", e.Postings()[1].AccountName())

	// Reordering changes precedence.
	e2 := model.NewEntry("2021/03/01", "STARBUCKS COFFEE #123", "Assets:Checking", "-4.50")
	require.True(t, Recognize(e2, []model.Rule{rules[1], rules[0]}))
	assert.Equal(t, "Morning Coffee", e2.Description)
}

func TestRecognize_Idempotent(t *testing.T) {
	e := model.NewEntry("2021/03/01", "STARBUCKS COFFEE #123", "Assets:Checking", "-4.50")
	require.True(t, Recognize(e, []model.Rule{coffee}))

	other := model.Rule{Pattern: "Morning", Description: "Again", Account: "Expenses:Again"}
	assert.False(t, Recognize(e, []model.Rule{coffee, other}))
	assert.Equal(t, "Morning Coffee", e.Description)
	assert.Equal(t, "STARBUCKS COFFEE #123", e.Comment)
	assert.Len(t, e.Postings(), 2)
}

func TestRecognize_NoMatch(t *testing.T) {
	e := model.NewEntry("2021/03/01", "UWM RESTAU MILWAUKEE", "Assets:Checking", "-5.00")

	assert.False(t, Recognize(e, []model.Rule{coffee}))
	assert.False(t, e.Recognized())
	assert.Equal(t, "UWM RESTAU MILWAUKEE", e.Description)
	assert.Empty(t, e.Comment)
	assert.Len(t, e.Postings(), 1)

	assert.False(t, Recognize(e, nil))
}

func TestRecognize_DoesNotMutateRules(t *testing.T) {
	rules := []model.Rule{coffee}
	e := model.NewEntry("2021/03/01", "COFFEE", "Assets:Checking", "-1.00")
	Recognize(e, rules)
	assert.Equal(t, []model.Rule{coffee}, rules)
}

func TestMatch(t *testing.T) {
	rules := []model.Rule{
		{Pattern: "GITHUB", Description: "GitHub", Account: "Expenses:Software"},
		coffee,
	}

	r, idx, ok := Match("PEETS COFFEE", rules)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, coffee, r)

	_, idx, ok = Match("coffee", rules)
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}
