package ledger

import (
	"cmp"
	"slices"
	"strings"

	"fjacquet/divledger/internal/models"

	"github.com/shopspring/decimal"
)

// Filter selects and orders transactions for a listing. Empty fields match
// everything; Name matches case-insensitively as a substring.
type Filter struct {
	Type      models.TransactionType
	Division  string
	Name      string
	SortBy    string
	Ascending bool
}

// FilterTransactions applies f to txs and returns a new slice. Sorting is
// stable so equal keys keep their persisted order. An empty SortBy keeps
// persisted order.
func FilterTransactions(txs []models.Transaction, f Filter) []models.Transaction {
	needle := strings.ToLower(strings.TrimSpace(f.Name))
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.Division != "" && tx.Division != f.Division {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(tx.Name), needle) {
			continue
		}
		out = append(out, tx)
	}

	compare := comparator(f.SortBy)
	if compare == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b models.Transaction) int {
		if f.Ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})
	return out
}

// ValidSortKey reports whether key is accepted by Filter.SortBy.
func ValidSortKey(key string) bool {
	return key == "" || comparator(key) != nil
}

func comparator(key string) func(a, b models.Transaction) int {
	switch key {
	case models.SortByDatetime:
		return func(a, b models.Transaction) int { return cmp.Compare(a.Timestamp, b.Timestamp) }
	case models.SortByAmount:
		return func(a, b models.Transaction) int { return a.Amount.Cmp(b.Amount) }
	case models.SortByName:
		return func(a, b models.Transaction) int { return cmp.Compare(a.Name, b.Name) }
	case models.SortByDivision:
		return func(a, b models.Transaction) int { return cmp.Compare(a.Division, b.Division) }
	default:
		return nil
	}
}

// RecentTransactions returns at most n transactions, newest first.
func RecentTransactions(txs []models.Transaction, n int) []models.Transaction {
	out := FilterTransactions(txs, Filter{SortBy: models.SortByDatetime})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DivisionTransactions returns the transactions recorded against division,
// including those orphaned by a deleted division.
func DivisionTransactions(txs []models.Transaction, division string) []models.Transaction {
	return FilterTransactions(txs, Filter{Division: division})
}

// DailyTimeline sums amounts per calendar day and type, ordered by date then type.
func DailyTimeline(txs []models.Transaction) []models.DailyTotal {
	type key struct {
		date string
		typ  models.TransactionType
	}
	totals := map[key]decimal.Decimal{}
	for _, tx := range txs {
		k := key{tx.Date(), tx.Type}
		totals[k] = totals[k].Add(tx.Amount)
	}

	out := make([]models.DailyTotal, 0, len(totals))
	for k, amount := range totals {
		out = append(out, models.DailyTotal{Date: k.date, Type: k.typ, Amount: amount})
	}
	slices.SortFunc(out, func(a, b models.DailyTotal) int {
		return cmpOr(cmp.Compare(a.Date, b.Date), cmp.Compare(a.Type, b.Type))
	})
	return out
}

// TopSpenders returns the n names with the largest debit totals, largest first.
// A negative n returns every spender.
func TopSpenders(txs []models.Transaction, n int) []models.NamedTotal {
	out := debitTotals(txs, func(tx models.Transaction) string { return tx.Name })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SpendingByDivision returns debit totals per division, largest first.
func SpendingByDivision(txs []models.Transaction) []models.NamedTotal {
	return debitTotals(txs, func(tx models.Transaction) string { return tx.Division })
}

func debitTotals(txs []models.Transaction, keyOf func(models.Transaction) string) []models.NamedTotal {
	var out []models.NamedTotal
	index := map[string]int{}
	for _, tx := range txs {
		if !tx.IsDebit() {
			continue
		}
		k := keyOf(tx)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, models.NamedTotal{Name: k, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}
	slices.SortStableFunc(out, func(a, b models.NamedTotal) int {
		return b.Amount.Cmp(a.Amount)
	})
	if out == nil {
		out = []models.NamedTotal{}
	}
	return out
}

// LocatedTransactions returns the transactions carrying both coordinates.
func LocatedTransactions(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0)
	for _, tx := range txs {
		if tx.HasLocation() {
			out = append(out, tx)
		}
	}
	return out
}

// clusterNameLimit is how many distinct submitters a cluster lists by name.
const clusterNameLimit = 3

type point struct{ lat, long float64 }

// mappable returns the transactions whose coordinates both parse.
func mappable(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0)
	for _, tx := range txs {
		if _, _, ok := tx.Coordinates(); ok {
			out = append(out, tx)
		}
	}
	return out
}

// LocationClusters groups located transactions by exact coordinates, most
// submissions first. Many submissions from one spot may be coordinated.
func LocationClusters(txs []models.Transaction) []models.LocationCluster {
	type cluster struct {
		models.LocationCluster
		names []string
		seen  map[string]struct{}
	}
	var order []point
	groups := map[point]*cluster{}
	for _, tx := range mappable(txs) {
		lat, long, _ := tx.Coordinates()
		p := point{lat, long}
		c, ok := groups[p]
		if !ok {
			c = &cluster{
				LocationCluster: models.LocationCluster{Latitude: lat, Longitude: long, TotalAmount: decimal.Zero},
				seen:            map[string]struct{}{},
			}
			groups[p] = c
			order = append(order, p)
		}
		c.Count++
		c.TotalAmount = c.TotalAmount.Add(tx.Amount)
		if _, dup := c.seen[tx.Name]; !dup {
			c.seen[tx.Name] = struct{}{}
			c.names = append(c.names, tx.Name)
		}
	}

	out := make([]models.LocationCluster, 0, len(order))
	for _, p := range order {
		c := groups[p]
		names := c.names
		if len(names) > clusterNameLimit {
			c.Names = strings.Join(names[:clusterNameLimit], ", ") + "..."
		} else {
			c.Names = strings.Join(names, ", ")
		}
		out = append(out, c.LocationCluster)
	}
	slices.SortFunc(out, func(a, b models.LocationCluster) int {
		return cmpOr(
			cmp.Compare(b.Count, a.Count),
			cmp.Compare(a.Latitude, b.Latitude),
			cmp.Compare(a.Longitude, b.Longitude),
		)
	})
	return out
}

// LocatedCountsByDivision counts located transactions per division, ordered by name.
func LocatedCountsByDivision(txs []models.Transaction) []models.NamedCount {
	counts := map[string]int{}
	for _, tx := range mappable(txs) {
		counts[tx.Division]++
	}
	out := make([]models.NamedCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.NamedCount{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b models.NamedCount) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// LocatedDailyCounts counts located transactions per calendar day, oldest first.
func LocatedDailyCounts(txs []models.Transaction) []models.DailyCount {
	counts := map[string]int{}
	for _, tx := range mappable(txs) {
		counts[tx.Date()]++
	}
	out := make([]models.DailyCount, 0, len(counts))
	for date, n := range counts {
		out = append(out, models.DailyCount{Date: date, Count: n})
	}
	slices.SortFunc(out, func(a, b models.DailyCount) int { return cmp.Compare(a.Date, b.Date) })
	return out
}

// cmpOr returns the first of its arguments that is not zero, like cmp.Or
// (Go 1.22+), so the package builds on the Go 1.21 toolchain.
func cmpOr(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
