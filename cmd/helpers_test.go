//go:build !integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var testTables = map[string]string{
	"flights": `flight,origin,airline_id,scheduled_departure,departure,departure_delay
AA100,JFK,AA,2023-01-05 08:00:00,2023-01-05 08:05:00,5
AA101,JFK,AA,2023-01-05 09:00:00,2023-01-05 10:10:00,70
UA200,EWR,UA,2023-02-01 07:00:00,,
UA201,EWR,UA,2023-02-01 12:00:00,2023-02-01 12:30:00,30
`,
	"airports": `airport_code,name,latitude,longitude
JFK,John F Kennedy Intl,40.6398,-73.7789
EWR,Newark Liberty Intl,40.6925,-74.1687
`,
	"airlines": `airline_id,airline
AA,American Airlines Inc.
UA,United Air Lines Inc.
`,
	"aircrafts": `tail_number,model,manufacturer,seats
N101AA,A321,AIRBUS,190
`,
}

// useTestEnv moves into a temp dir holding a CSV dataset and points the
// config at it.
func useTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	for name, body := range testTables {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name+".csv"), []byte(body), 0o644))
	}

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	t.Setenv("FLIGHTDELAY_DATA_SOURCE", dataDir)
	t.Setenv("FLIGHTDELAY_LOG_LEVEL", "error")

	oldCfg := cfg
	t.Cleanup(func() { cfg = oldCfg })
	return dir
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reportAirports, reportAirlines, reportFormat = nil, nil, "text"
	importTo, domainsJSON = "", false
	configPath, logLevel = "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		configPath, logLevel = "", ""
	})

	err := rootCmd.ExecuteContext(context.Background())
	return strings.TrimSpace(out.String()), err
}
