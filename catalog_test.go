package kasir

import (
	"errors"
	"reflect"
	"testing"
)

func names(products []Product) []string {
	res := make([]string, len(products))
	for i, p := range products {
		res[i] = p.Name
	}
	return res
}

func TestCatalog_Add(t *testing.T) {
	c := NewCatalog(product(7, "Teh", 4000, 3))
	p, err := c.Add(ProductFields{Name: "Roti", Price: idr(12000), Stock: 4, Category: "Makanan"})
	if err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if p.ID != 8 {
		t.Errorf("Add() id = %d, want 8", p.ID)
	}
	// ids are never reused, even after a removal
	c.Remove(8)
	q, _ := c.Add(ProductFields{Name: "Roti", Price: idr(12000), Stock: 4})
	if q.ID != 9 {
		t.Errorf("Add() after Remove id = %d, want 9", q.ID)
	}
}

func TestCatalog_AddInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		in    ProductFields
		field string
	}{
		{"empty name", ProductFields{Name: " ", Price: idr(1)}, "name"},
		{"negative price", ProductFields{Name: "A", Price: idr(-1)}, "price"},
		{"negative stock", ProductFields{Name: "A", Price: idr(1), Stock: -2}, "stock"},
		{"relative image", ProductFields{Name: "A", Price: idr(1), Image: "kopi.png"}, "image"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCatalog()
			_, err := c.Add(tc.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Add() error = %v, want a *ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Errorf("Add() invalid field = %q, want %q", verr.Field, tc.field)
			}
			if c.Len() != 0 {
				t.Errorf("Add() with invalid fields changed the catalog")
			}
		})
	}
}

func TestParseProductFields(t *testing.T) {
	f, err := ParseProductFields(" Kopi Susu ", "15000", "20", "Minuman", "", "IDR")
	if err != nil {
		t.Fatalf("ParseProductFields() unexpected error: %v", err)
	}
	want := ProductFields{Name: "Kopi Susu", Price: idr(15000), Stock: 20, Category: "Minuman"}
	if f.Name != want.Name || !f.Price.Equal(want.Price) || f.Stock != want.Stock || f.Category != want.Category {
		t.Errorf("ParseProductFields() = %+v, want %+v", f, want)
	}

	for _, in := range [][2]string{{"abc", "1"}, {"1000", "lots"}, {"", "1"}} {
		_, err := ParseProductFields("X", in[0], in[1], "", "", "IDR")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("ParseProductFields(price=%q, stock=%q) error = %v, want a *ValidationError", in[0], in[1], err)
		}
	}
}

func TestCatalog_Update(t *testing.T) {
	c := NewCatalog(product(1, "Kopi", 18000, 5))
	if err := c.Update(1, ProductFields{Name: "Kopi Aren", Price: idr(20000), Stock: 8, Category: "Minuman"}); err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	p, _ := c.Get(1)
	if p.ID != 1 || p.Name != "Kopi Aren" || p.Stock != 8 || !p.Price.Equal(idr(20000)) {
		t.Errorf("Update() = %v", p)
	}

	// unknown id: silent no-op
	before := c.Products()
	if err := c.Update(42, ProductFields{Name: "Ghost", Price: idr(1)}); err != nil {
		t.Errorf("Update(unknown) error = %v, want nil", err)
	}
	if !reflect.DeepEqual(before, c.Products()) {
		t.Errorf("Update(unknown) changed the catalog")
	}

	// invalid fields: no change
	if err := c.Update(1, ProductFields{Name: ""}); err == nil {
		t.Error("Update() with an empty name want an error")
	}
	if !reflect.DeepEqual(before, c.Products()) {
		t.Errorf("Update() with invalid fields changed the catalog")
	}
}

func TestCatalog_RemoveIdempotent(t *testing.T) {
	c := NewCatalog(product(1, "Kopi", 18000, 5), product(2, "Teh", 4000, 5))
	c.Remove(1)
	once := c.Products()
	c.Remove(1)
	if !reflect.DeepEqual(once, c.Products()) {
		t.Errorf("second Remove() changed the catalog")
	}
	if got := names(c.Products()); !reflect.DeepEqual(got, []string{"Teh"}) {
		t.Errorf("Products() = %v, want [Teh]", got)
	}
}

func TestCatalog_DecrementStock(t *testing.T) {
	testCases := []struct {
		stock, qty   int
		want, remove int
	}{
		{10, 3, 7, 3},
		{5, 5, 0, 5},
		{2, 5, 0, 2},
		{0, 1, 0, 0},
	}
	for _, tc := range testCases {
		c := NewCatalog(product(1, "Kopi", 18000, tc.stock))
		removed := c.DecrementStock(1, tc.qty)
		p, _ := c.Get(1)
		if p.Stock != tc.want || removed != tc.remove {
			t.Errorf("DecrementStock(%d) from %d = stock %d removed %d, want stock %d removed %d", tc.qty, tc.stock, p.Stock, removed, tc.want, tc.remove)
		}
	}
	if got := NewCatalog().DecrementStock(99, 1); got != 0 {
		t.Errorf("DecrementStock(unknown) = %d, want 0", got)
	}
}

func TestCatalog_List(t *testing.T) {
	c := DefaultCatalog("IDR")
	testCases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"everything", Filter{}, []string{"Kopi Gula Aren", "Croissant Butter", "Air Mineral", "Dimsum Mentai", "Nasi Goreng"}},
		{"All sentinel", Filter{Category: AllCategories}, []string{"Kopi Gula Aren", "Croissant Butter", "Air Mineral", "Dimsum Mentai", "Nasi Goreng"}},
		{"category", Filter{Category: "Makanan"}, []string{"Croissant Butter", "Nasi Goreng"}},
		{"case insensitive search", Filter{Search: "KOPI"}, []string{"Kopi Gula Aren"}},
		{"search and category", Filter{Search: "r", Category: "Minuman"}, []string{"Kopi Gula Aren", "Air Mineral"}},
		{"nothing", Filter{Search: "pizza"}, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := names(c.List(tc.filter)); !reflect.DeepEqual(got, tc.want) && !(len(got) == 0 && len(tc.want) == 0) {
				t.Errorf("List() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCatalog_LowStock(t *testing.T) {
	c := DefaultCatalog("IDR")
	got := names(c.LowStock(DefaultRestockThreshold))
	want := []string{"Croissant Butter", "Nasi Goreng"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LowStock(10) = %v, want %v", got, want)
	}
	if got := NewCatalog().LowStock(10); len(got) != 0 {
		t.Errorf("LowStock() on an empty catalog = %v, want none", got)
	}
	if got := c.LowStock(0); len(got) != 0 {
		t.Errorf("LowStock(0) = %v, want none", names(got))
	}
}

func TestCatalog_Categories(t *testing.T) {
	got := DefaultCatalog("IDR").Categories()
	want := []string{"All", "Minuman", "Makanan", "Snack"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
}

func TestCatalog_Shortages(t *testing.T) {
	c := NewCatalog(product(1, "Kopi", 18000, 2), product(2, "Teh", 4000, 9))
	lines := []CartLine{
		{Product: product(1, "Kopi", 18000, 2), Qty: 3},
		{Product: product(2, "Teh", 4000, 9), Qty: 9},
		{Product: product(3, "Gone", 1000, 5), Qty: 1},
	}
	got := c.Shortages(lines)
	want := []StockConflict{
		{ProductID: 1, Name: "Kopi", Requested: 3, Available: 2},
		{ProductID: 3, Name: "Gone", Requested: 1, Available: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Shortages() = %v, want %v", got, want)
	}
}
