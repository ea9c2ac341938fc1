package aggregate

import (
	"math/rand"
	"testing"

	"fintrack/internal/core"
)

var testCategories = []core.Category{
	{ID: "food", Name: "Food", Icon: "🍔", Color: "#f97316"},
	{ID: "bills", Name: "Bills", Icon: "💡", Color: "#ef4444"},
}

func spend(day int, cents int64, cat string) core.Transaction {
	return core.Transaction{
		Amount:     core.Cents(cents),
		Date:       core.NewDate(2024, 3, day),
		CategoryID: cat,
		Kind:       core.KindExpense,
	}
}

func TestByCategory(t *testing.T) {
	txs := []core.Transaction{
		spend(1, 1250, "food"),
		spend(2, 10000, "bills"),
		spend(3, 750, "food"),
		spend(4, 300, ""),
		spend(5, 200, "deleted-category"),
	}
	res := ByCategory(txs, testCategories)

	if res.Total.Cents != 12500 {
		t.Fatalf("Total = %d, want 12500", res.Total.Cents)
	}
	want := map[string]struct {
		cents int64
		count int
		name  string
	}{
		"food":               {2000, 2, "Food"},
		"bills":              {10000, 1, "Bills"},
		core.OtherCategoryID: {500, 2, core.OtherCategoryName},
	}
	if len(res.ByCategory) != len(want) {
		t.Fatalf("got %d buckets, want %d", len(res.ByCategory), len(want))
	}
	for _, b := range res.ByCategory {
		w, ok := want[b.CategoryID]
		if !ok {
			t.Fatalf("unexpected bucket %q", b.CategoryID)
		}
		if b.Amount.Cents != w.cents || b.Count != w.count || b.Name != w.name {
			t.Errorf("bucket %q = %+v, want %+v", b.CategoryID, b, w)
		}
	}
	other := res.ByCategory[2]
	if other.Color != core.OtherCategoryColor || other.Icon != core.OtherCategoryIcon {
		t.Errorf("Other bucket should use fallback icon/color, got %+v", other)
	}
}

func TestByCategoryEmpty(t *testing.T) {
	res := ByCategory(nil, testCategories)
	if res.Total.Cents != 0 || res.ByCategory == nil || len(res.ByCategory) != 0 {
		t.Fatalf("expected zero total and empty slice, got %+v", res)
	}
	if _, ok := res.Top(); ok {
		t.Fatalf("empty result has no top category")
	}
}

func TestByCategorySumMatchesTotalUnderPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cats := []string{"food", "bills", "", "unknown"}
	var txs []core.Transaction
	for i := 0; i < 200; i++ {
		txs = append(txs, spend(1+rng.Intn(28), 1+rng.Int63n(100000), cats[rng.Intn(len(cats))]))
	}
	base := ByCategory(txs, testCategories)

	for round := 0; round < 5; round++ {
		shuffled := append([]core.Transaction(nil), txs...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		res := ByCategory(shuffled, testCategories)

		var sum int64
		for _, b := range res.ByCategory {
			sum += b.Amount.Cents
		}
		if sum != res.Total.Cents {
			t.Fatalf("round %d: bucket sum %d != total %d", round, sum, res.Total.Cents)
		}
		if res.Total != base.Total {
			t.Fatalf("round %d: total changed under permutation", round)
		}
		for i, b := range res.Sorted() {
			if b != base.Sorted()[i] {
				t.Fatalf("round %d: sorted bucket %d differs", round, i)
			}
		}
	}
}

func TestSortedAndTop(t *testing.T) {
	res := ByCategory([]core.Transaction{
		spend(1, 500, "food"),
		spend(1, 900, "bills"),
		spend(1, 500, ""),
	}, testCategories)

	sorted := res.Sorted()
	names := []string{sorted[0].Name, sorted[1].Name, sorted[2].Name}
	if names[0] != "Bills" || names[1] != "Food" || names[2] != "Other" {
		t.Fatalf("unexpected order %v", names)
	}
	if res.ByCategory[0].Name != "Food" {
		t.Fatalf("Sorted must not reorder the original result")
	}
	top, ok := res.Top()
	if !ok || top.Name != "Bills" {
		t.Fatalf("Top = %+v, %v", top, ok)
	}
}

func TestByDay(t *testing.T) {
	start := core.NewDate(2024, 3, 1)
	txs := []core.Transaction{
		spend(1, 100, "food"),
		spend(1, 50, "bills"),
		spend(3, 200, ""),
		spend(31, 10, "food"),
		{Amount: core.Cents(999), Date: core.NewDate(2024, 2, 29)},
		{Amount: core.Cents(999), Date: core.NewDate(2024, 4, 1)},
	}
	got := ByDay(txs, start, 31)
	if len(got) != 31 {
		t.Fatalf("len = %d, want 31", len(got))
	}
	want := map[int]int64{0: 150, 2: 200, 30: 10}
	for i, m := range got {
		if m.Cents != want[i] {
			t.Errorf("day %d = %d, want %d", i, m.Cents, want[i])
		}
	}
	if len(ByDay(txs, start, 0)) != 0 {
		t.Errorf("zero-length period should yield empty series")
	}
}

func TestFilter(t *testing.T) {
	txs := []core.Transaction{spend(1, 100, "food"), spend(15, 200, "bills"), {Amount: core.Cents(5), Date: core.NewDate(2024, 4, 1)}}
	start, end := core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31)
	if got := Filter(txs, start, end, ""); len(got) != 2 {
		t.Errorf("window filter kept %d, want 2", len(got))
	}
	if got := Filter(txs, start, end, "bills"); len(got) != 1 || got[0].Amount.Cents != 200 {
		t.Errorf("category filter = %+v", got)
	}
	if Total(txs).Cents != 305 {
		t.Errorf("Total = %d", Total(txs).Cents)
	}
}

func TestByMonth(t *testing.T) {
	txs := []core.Transaction{
		{Amount: core.Cents(100), Date: core.NewDate(2024, 3, 5)},
		{Amount: core.Cents(300), Date: core.NewDate(2024, 1, 9)},
		{Amount: core.Cents(50), Date: core.NewDate(2024, 3, 20)},
	}
	got := ByMonth(txs)
	if len(got) != 2 {
		t.Fatalf("got %d months", len(got))
	}
	if got[0].Month != "2024-01" || got[0].Amount.Cents != 300 || got[0].Count != 1 {
		t.Errorf("first month = %+v", got[0])
	}
	if got[1].Month != "2024-03" || got[1].Amount.Cents != 150 || got[1].Count != 2 {
		t.Errorf("second month = %+v", got[1])
	}
}
