package json_test

import (
	"context"
	encjson "encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsonwriter "github.com/bkyoung/diffscope/internal/adapter/output/json"
	"github.com/bkyoung/diffscope/internal/usecase/stat"
)

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	writer := jsonwriter.NewWriter(func() string { return "20260101T000000Z" })

	report := stat.Report{
		Repository: "demo",
		BaseRef:    "main",
		TargetRef:  "feature/x",
		Files: []stat.FileStat{
			{Path: "a.go", Added: 2, Removed: 1, Hunks: 1},
		},
		TotalAdded:   2,
		TotalRemoved: 1,
	}

	path, err := writer.Write(context.Background(), report, dir)
	require.NoError(t, err)
	assert.Contains(t, path, "diffstat_feature-x_20260101T000000Z.json")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded stat.Report
	require.NoError(t, encjson.Unmarshal(data, &decoded))
	assert.Equal(t, report, decoded)
}

func TestWriter_Write_EmptyTarget(t *testing.T) {
	dir := t.TempDir()
	writer := jsonwriter.NewWriter(func() string { return "ts" })

	path, err := writer.Write(context.Background(), stat.Report{}, dir)
	require.NoError(t, err)
	assert.Contains(t, path, "diffstat_unknown_ts.json")
}
