package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"

	"segstats/domain/dataset"
)

// CustomerColumns is the column order of generated tables and CSV files
var CustomerColumns = []string{
	"age", "gender", "income", "spending_score", "membership_years",
	"purchase_frequency", "preferred_category", "last_purchase_amount",
	"spending_score_category", "purchase_frequency_category", "cluster",
}

var (
	genders    = []string{"Male", "Female", "Other"}
	categories = []string{"Electronics", "Clothing", "Groceries", "Home & Garden", "Sports"}
)

// CustomerGeneratorConfig configures the synthetic customer generator
type CustomerGeneratorConfig struct {
	CustomerCount int   `json:"customer_count"`
	ClusterCount  int   `json:"cluster_count"`
	Seed          int64 `json:"seed"`
}

// DefaultCustomerConfig generates 1000 customers in 3 clusters
func DefaultCustomerConfig() CustomerGeneratorConfig {
	return CustomerGeneratorConfig{
		CustomerCount: 1000,
		ClusterCount:  3,
		Seed:          42,
	}
}

// Customer is one generated row
type Customer struct {
	Age                       int
	Gender                    string
	Income                    int
	SpendingScore             int
	MembershipYears           int
	PurchaseFrequency         int
	PreferredCategory         string
	LastPurchaseAmount        float64
	SpendingScoreCategory     string
	PurchaseFrequencyCategory string
	Cluster                   int
}

// CustomerGenerator produces a seeded customer table whose clusters differ
// in income, spending score and purchase frequency.
type CustomerGenerator struct {
	config CustomerGeneratorConfig
	rng    *rand.Rand
}

// NewCustomerGenerator creates a new customer generator
func NewCustomerGenerator(config CustomerGeneratorConfig) *CustomerGenerator {
	if config.ClusterCount < 1 {
		config.ClusterCount = 1
	}
	return &CustomerGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns CustomerCount customers. Clusters are assigned round-robin
// so none is empty when CustomerCount >= ClusterCount.
func (g *CustomerGenerator) Generate() []Customer {
	customers := make([]Customer, g.config.CustomerCount)
	for i := range customers {
		customers[i] = g.customer(i % g.config.ClusterCount)
	}
	return customers
}

func (g *CustomerGenerator) customer(cluster int) Customer {
	shift := float64(cluster)

	income := g.clampedNormal(45000+25000*shift, 12000, 20000, 150000)
	score := g.clampedNormal(35+20*shift, 12, 1, 100)
	frequency := g.clampedNormal(12+8*shift, 5, 1, 50)

	return Customer{
		Age:                       g.rng.Intn(52) + 18,
		Gender:                    genders[g.rng.Intn(len(genders))],
		Income:                    int(income),
		SpendingScore:             int(score),
		MembershipYears:           g.rng.Intn(10) + 1,
		PurchaseFrequency:         int(frequency),
		PreferredCategory:         categories[g.rng.Intn(len(categories))],
		LastPurchaseAmount:        math.Round((10+g.rng.ExpFloat64()*150+40*shift)*100) / 100,
		SpendingScoreCategory:     band(score, 34, 67),
		PurchaseFrequencyCategory: band(frequency, 17, 34),
		Cluster:                   cluster,
	}
}

func (g *CustomerGenerator) clampedNormal(mean, sd, lo, hi float64) float64 {
	v := math.Round(mean + g.rng.NormFloat64()*sd)
	return math.Max(lo, math.Min(hi, v))
}

func band(v, medium, high float64) string {
	switch {
	case v >= high:
		return "High"
	case v >= medium:
		return "Medium"
	default:
		return "Low"
	}
}

// Table converts customers into a typed table; cluster is categorical.
func Table(customers []Customer) (*dataset.Table, error) {
	n := len(customers)
	num := func() []float64 { return make([]float64, n) }
	str := func() []string { return make([]string, n) }

	age, income, score, years, freq, amount := num(), num(), num(), num(), num(), num()
	gender, category, scoreCat, freqCat, cluster := str(), str(), str(), str(), str()

	for i, c := range customers {
		age[i] = float64(c.Age)
		gender[i] = c.Gender
		income[i] = float64(c.Income)
		score[i] = float64(c.SpendingScore)
		years[i] = float64(c.MembershipYears)
		freq[i] = float64(c.PurchaseFrequency)
		category[i] = c.PreferredCategory
		amount[i] = c.LastPurchaseAmount
		scoreCat[i] = c.SpendingScoreCategory
		freqCat[i] = c.PurchaseFrequencyCategory
		cluster[i] = strconv.Itoa(c.Cluster)
	}

	return dataset.NewTable(
		dataset.NewNumericColumn("age", age),
		dataset.NewCategoricalColumn("gender", gender),
		dataset.NewNumericColumn("income", income),
		dataset.NewNumericColumn("spending_score", score),
		dataset.NewNumericColumn("membership_years", years),
		dataset.NewNumericColumn("purchase_frequency", freq),
		dataset.NewCategoricalColumn("preferred_category", category),
		dataset.NewNumericColumn("last_purchase_amount", amount),
		dataset.NewCategoricalColumn("spending_score_category", scoreCat),
		dataset.NewCategoricalColumn("purchase_frequency_category", freqCat),
		dataset.NewCategoricalColumn("cluster", cluster),
	)
}

// GenerateTable is Generate followed by Table
func (g *CustomerGenerator) GenerateTable() (*dataset.Table, error) {
	return Table(g.Generate())
}

// WriteCSV writes customers with a header row in CustomerColumns order
func WriteCSV(w io.Writer, customers []Customer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CustomerColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, c := range customers {
		record := []string{
			strconv.Itoa(c.Age),
			c.Gender,
			strconv.Itoa(c.Income),
			strconv.Itoa(c.SpendingScore),
			strconv.Itoa(c.MembershipYears),
			strconv.Itoa(c.PurchaseFrequency),
			c.PreferredCategory,
			strconv.FormatFloat(c.LastPurchaseAmount, 'f', 2, 64),
			c.SpendingScoreCategory,
			c.PurchaseFrequencyCategory,
			strconv.Itoa(c.Cluster),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write customer row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
