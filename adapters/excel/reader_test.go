package excel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"segstats/domain/core"
	"segstats/domain/dataset"
	"segstats/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var quietLogger = internal.NewLoggerWithZap(internal.LogLevelError, zap.NewNop())

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadTableCSVInfersKinds(t *testing.T) {
	path := writeCSV(t, "age,gender,income,cluster\n23,Male,\"$52,000\",0\n45, Female ,61000,1\n31,Other,48000,0\n")

	tbl, err := NewDataReader(path).WithLogger(quietLogger).ReadTable()
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "gender", "income", "cluster"}, tbl.Names())
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"age", "income", "cluster"}, tbl.NumericColumns().Names())

	income, err := tbl.Column("income")
	require.NoError(t, err)
	assert.Equal(t, []float64{52000, 61000, 48000}, income.Float64s())

	gender, err := tbl.Column("gender")
	require.NoError(t, err)
	assert.Equal(t, []string{"Male", "Female", "Other"}, gender.Strings())
}

func TestReadTableForcesCategorical(t *testing.T) {
	path := writeCSV(t, "age,cluster\n23,0\n45,1\n31,0\n")

	tbl, err := NewDataReader(path, WithCategorical("cluster")).WithLogger(quietLogger).ReadTable()
	require.NoError(t, err)

	cluster, err := tbl.Column("cluster")
	require.NoError(t, err)
	assert.True(t, cluster.IsCategorical())
	assert.Equal(t, []string{"0", "1"}, cluster.Levels())
}

func TestReadTableRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"blank cell", "age,gender\n23,Male\n,Female\n"},
		{"short row", "age,gender\n23,Male\n45\n"},
		{"header only", "age,gender\n"},
		{"duplicate header", "age,age\n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDataReader(writeCSV(t, tt.content)).WithLogger(quietLogger).ReadTable()
			assert.Error(t, err)
		})
	}

	_, err := NewDataReader(writeCSV(t, "age\n1\n,\n")).WithLogger(quietLogger).ReadTable()
	assert.True(t, errors.Is(err, core.ErrInvalidTable))
}

func TestReadTableMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.xlsx")).WithLogger(quietLogger).ReadTable()
	assert.Error(t, err)
}

func TestReadTableXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet("Customers")
	require.NoError(t, err)
	rows := [][]interface{}{
		{"age", "preferred_category", "spending_score"},
		{23, "Books", 61.5},
		{45, "Sports", 12},
		{31, "Books", 88},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Customers", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := NewDataReader(path, WithSheet("Customers")).WithLogger(quietLogger).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.NumRows())

	score, err := tbl.Column("spending_score")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindNumeric, score.Kind())
	assert.Equal(t, []float64{61.5, 12, 88}, score.Float64s())

	category, err := tbl.Column("preferred_category")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindCategorical, category.Kind())

	// the default sheet is the first one, which is the empty Sheet1
	_, err = NewDataReader(path).WithLogger(quietLogger).ReadTable()
	assert.Error(t, err)
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDataReader(writeCSV(t, "age\n1\n")).WithLogger(quietLogger).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
