package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTextPassesUnchanged(t *testing.T) {
	checker := New(2000, nil)

	report := checker.Check("Quantum computing is reshaping cryptography research.")

	assert.True(t, report.Safe)
	assert.Equal(t, SeverityNone, report.Severity)
	assert.Empty(t, report.Issues)
	assert.Equal(t, "Quantum computing is reshaping cryptography research.", report.SanitizedText)
}

func TestProfanityIsCensoredButNotBlocked(t *testing.T) {
	checker := New(2000, nil)

	report := checker.Check("This product is shit but the docs are fine.")

	assert.True(t, report.Safe)
	assert.Equal(t, SeverityWarning, report.Severity)
	assert.Contains(t, report.Issues, "contains inappropriate language")
	assert.NotContains(t, report.SanitizedText, "shit")
	assert.Contains(t, report.SanitizedText, "*")
}

func TestHarmfulKeywordsAreBlocked(t *testing.T) {
	checker := New(2000, nil)

	report := checker.Check("A post that glorifies violence against strangers.")

	assert.False(t, report.Safe)
	assert.Equal(t, SeverityBlocked, report.Severity)
	assert.Contains(t, report.Issues, "contains potentially harmful content: violence")
}

func TestConfiguredKeywordsExtendTheBlockList(t *testing.T) {
	checker := New(2000, []string{"Crypto Pump"})

	report := checker.Check("Join our crypto pump group tonight.")

	assert.False(t, report.Safe)
	assert.Equal(t, SeverityBlocked, report.Severity)
}

func TestOverlongContentGetsAWarning(t *testing.T) {
	checker := New(100, nil)

	report := checker.Check(strings.Repeat("a", 101))

	assert.True(t, report.Safe)
	assert.Equal(t, SeverityWarning, report.Severity)
	assert.Contains(t, report.Issues, "content too long (max 100 characters)")
}

func TestSpamHeuristics(t *testing.T) {
	checker := New(2000, nil)

	t.Run("exclamation marks", func(t *testing.T) {
		report := checker.Check("Wow!!! This is big!!! Really!!!")
		assert.Contains(t, report.Issues, "excessive exclamation marks")
		assert.Equal(t, SeverityWarning, report.Severity)
	})

	t.Run("shouting", func(t *testing.T) {
		report := checker.Check("BUY THE BEST NEW THING today")
		assert.Contains(t, report.Issues, "excessive capitalization")
	})

	t.Run("repetition", func(t *testing.T) {
		report := checker.Check("deal deal deal deal deal deal deal deal deal deal now now")
		assert.Contains(t, report.Issues, "repetitive content")
	})

	t.Run("spam phrases", func(t *testing.T) {
		report := checker.Check("Limited offer, click here before midnight.")
		assert.Contains(t, report.Issues, "spam phrase: click here")
	})
}

func TestBlockedOutranksWarning(t *testing.T) {
	checker := New(2000, nil)

	report := checker.Check("CLICK HERE NOW FOR FREE MONEY about hate speech!!!!!!!")

	require.False(t, report.Safe)
	assert.Equal(t, SeverityBlocked, report.Severity)
	assert.Greater(t, len(report.Issues), 1)
}

func TestCheckIsDeterministic(t *testing.T) {
	checker := New(2000, nil)
	text := "Remote work is changing how teams collaborate. What does it mean for you?"

	first := checker.Check(text)
	second := checker.Check(text)

	assert.Equal(t, first, second)
}
