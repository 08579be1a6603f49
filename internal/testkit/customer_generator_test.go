package testkit

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerGenerator_Deterministic(t *testing.T) {
	config := CustomerGeneratorConfig{CustomerCount: 50, ClusterCount: 3, Seed: 7}

	first := NewCustomerGenerator(config).Generate()
	second := NewCustomerGenerator(config).Generate()
	assert.Equal(t, first, second)

	config.Seed = 8
	assert.NotEqual(t, first, NewCustomerGenerator(config).Generate())
}

func TestCustomerGenerator_Ranges(t *testing.T) {
	customers := NewCustomerGenerator(DefaultCustomerConfig()).Generate()
	require.Len(t, customers, 1000)

	perCluster := map[int]int{}
	for i, c := range customers {
		if c.Age < 18 || c.Age > 69 {
			t.Errorf("customer %d: age %d out of range", i, c.Age)
		}
		if c.SpendingScore < 1 || c.SpendingScore > 100 {
			t.Errorf("customer %d: spending score %d out of range", i, c.SpendingScore)
		}
		if c.Income < 20000 || c.Income > 150000 {
			t.Errorf("customer %d: income %d out of range", i, c.Income)
		}
		assert.Contains(t, []string{"Low", "Medium", "High"}, c.SpendingScoreCategory)
		perCluster[c.Cluster]++
	}
	assert.Equal(t, map[int]int{0: 334, 1: 333, 2: 333}, perCluster)
}

func TestTableSchema(t *testing.T) {
	tbl, err := NewCustomerGenerator(CustomerGeneratorConfig{CustomerCount: 30, ClusterCount: 3, Seed: 1}).GenerateTable()
	require.NoError(t, err)

	assert.Equal(t, CustomerColumns, tbl.Names())
	assert.Equal(t, 30, tbl.NumRows())
	assert.Equal(t, []string{"age", "income", "spending_score", "membership_years", "purchase_frequency", "last_purchase_amount"}, tbl.NumericColumns().Names())

	cluster, err := tbl.Column("cluster")
	require.NoError(t, err)
	assert.True(t, cluster.IsCategorical())
	assert.Equal(t, []string{"0", "1", "2"}, cluster.Levels())
}

func TestWriteCSV(t *testing.T) {
	customers := NewCustomerGenerator(CustomerGeneratorConfig{CustomerCount: 5, ClusterCount: 2, Seed: 3}).Generate()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, customers))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, CustomerColumns, records[0])
	assert.Equal(t, "1", records[2][10])
}
