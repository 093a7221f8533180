package classiccompare

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffNoDifferences(t *testing.T) {
	snap := Snapshot{ServerVersion: "8.0.99", TLSCipher: "AES128-GCM-SHA256"}
	require.Empty(t, diff(snap, snap))
}

func TestDiffReportsVersionAndCipherMismatch(t *testing.T) {
	x := Snapshot{ServerVersion: "8.0.99", TLSCipher: "AES128-GCM-SHA256"}
	classic := Snapshot{ServerVersion: "8.0.98", TLSCipher: "AES256-GCM-SHA384"}
	require.Len(t, diff(x, classic), 2)
}

func TestReportMatched(t *testing.T) {
	r := Report{}
	require.True(t, r.Matched(), "empty Differences should be Matched")
	r.Differences = []string{"x"}
	require.False(t, r.Matched(), "non-empty Differences should not be Matched")
}
