package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/muster-hq/muster/internal/platform/httpx"
)

func TestParseAssemblies(t *testing.T) {
	csv := "Dates,Mandatory\n" +
		"1-2 August 2024,YES\n" +
		"15 September 2024,NO\n" +
		"3-4 October 2024,maybe\n"

	rows, err := parseAssemblies([]byte(csv))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, TypeMandatory, rows[0].Type)
	require.True(t, rows[0].Period)
	require.Equal(t, time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC), rows[0].StartTime)
	require.Equal(t, time.Date(2024, time.August, 2, 23, 59, 59, 0, time.UTC), rows[0].EndTime)

	require.Equal(t, TypeOptional, rows[1].Type)
	require.False(t, rows[1].Period)
	require.Equal(t, time.Date(2024, time.September, 15, 0, 0, 0, 0, time.UTC), rows[1].StartTime)
	require.Equal(t, time.Date(2024, time.September, 15, 23, 59, 59, 0, time.UTC), rows[1].EndTime)

	require.Equal(t, TypeInvalid, rows[2].Type)
}

func TestParseAssembliesMissingColumns(t *testing.T) {
	_, err := parseAssemblies([]byte("When,Required\n1-2 August 2024,YES\n"))
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestParseAssembliesNoRows(t *testing.T) {
	_, err := parseAssemblies([]byte("Dates,Mandatory\n"))
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestParseAssembliesBadDate(t *testing.T) {
	for _, dates := range []string{"1-2 Augustus 2024", "one August 2024", "1-2 August", "1-x August 2024"} {
		_, err := parseAssemblies([]byte("Dates,Mandatory\n" + dates + ",YES\n"))
		require.True(t, errors.Is(err, httpx.ErrValidation), "dates %q", dates)
	}
}

func TestMandatoryType(t *testing.T) {
	require.Equal(t, TypeMandatory, mandatoryType(" yes "))
	require.Equal(t, TypeOptional, mandatoryType("NO"))
	require.Equal(t, TypeInvalid, mandatoryType(""))
	require.Equal(t, TypeInvalid, mandatoryType("perhaps"))
}
