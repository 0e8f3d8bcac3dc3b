package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveCronExpressionPassesThroughValidCron(t *testing.T) {
	expr, err := ResolveCronExpression("*/5 * * * *")
	require.NoError(t, err)
	require.Equal(t, "*/5 * * * *", expr)
}

func TestResolveCronExpressionPhrases(t *testing.T) {
	cases := []struct {
		phrase string
		want   string
	}{
		{"every 5 minutes", "*/5 * * * *"},
		{"every 2 hours", "0 */2 * * *"},
		{"hourly", "0 * * * *"},
		{"weekly on monday at 9am", "0 9 * * 1"},
	}
	for _, tc := range cases {
		got, err := ResolveCronExpression(tc.phrase)
		require.NoError(t, err, tc.phrase)
		require.Equal(t, tc.want, got, tc.phrase)
	}
}

func TestResolveCronExpressionRejectsGarbage(t *testing.T) {
	_, err := ResolveCronExpression("whenever I feel like it")
	require.Error(t, err)
	var unrecognized *ErrUnrecognizedSchedule
	require.ErrorAs(t, err, &unrecognized)
}

func TestValidateCronExpressionRejectsOutOfRange(t *testing.T) {
	require.Error(t, ValidateCronExpression("60 * * * *"))
	require.Error(t, ValidateCronExpression("* 24 * * *"))
	require.Error(t, ValidateCronExpression("* * * * * *"))
}

func TestGetNextRunsEveryFiveMinutes(t *testing.T) {
	from := time.Date(2026, 1, 1, 10, 2, 0, 0, time.UTC)
	runs, err := GetNextRuns("*/5 * * * *", 3, "UTC", from)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	require.Equal(t, 5, runs[0].Minute())
	require.Equal(t, 10, runs[1].Minute())
	require.Equal(t, 15, runs[2].Minute())
}

func TestGetNextRunsWeekdaysAtNine(t *testing.T) {
	// 2026-01-03 is a Saturday.
	from := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	runs, err := GetNextRuns("0 9 * * 1-5", 1, "UTC", from)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, time.Monday, runs[0].Weekday())
	require.Equal(t, 9, runs[0].Hour())
}
