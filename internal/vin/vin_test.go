package vin_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-headunit/internal/vin"
)

func TestNormalize(t *testing.T) {
	got, err := vin.Normalize("  wbavb13506pt12345 ")
	require.NoError(t, err)
	require.Equal(t, "WBAVB13506PT12345", got)

	for _, raw := range []string{"", "WBAVB13506PT1234", "WBAVB13506PT123456", "WBAVB13506PT1234O", "IBAVB13506PT12345", "WBAVB13506PT1234Q", "WBAVB13506PT1234-"} {
		_, err := vin.Normalize(raw)
		require.ErrorIs(t, err, vin.ErrInvalidVIN, raw)
	}
}

func TestAudioMatcherFirstKeywordWins(t *testing.T) {
	m := vin.NewAudioMatcher([]vin.AudioRule{
		{Make: "BMW", Keywords: []string{"Harman Kardon", "Individual"}},
		{Make: "Toyota", Keywords: []string{"JBL"}},
	})

	require.Equal(t, "Harman Kardon", m.Match("bmw", "335i Individual harman kardon pack"))
	require.Equal(t, "Individual", m.Match("BMW", "M Sport INDIVIDUAL"))
	require.Equal(t, "JBL", m.Match(" Toyota ", "Camry Grande jbl"))
	require.Empty(t, m.Match("Toyota", "Corolla Ascent"))
	require.Empty(t, m.Match("Mazda", "Bose"))

	var nilMatcher *vin.AudioMatcher
	require.Empty(t, nilMatcher.Match("BMW", "Harman Kardon"))
}

func TestVehicleFreeText(t *testing.T) {
	v := vin.Vehicle{Model: "3-Series", Series: " 328i "}
	require.Equal(t, "3-Series 328i", v.FreeText())
}
