package txfilter

import (
	"testing"

	"github.com/rounduppay/core/pkg/model"
	"github.com/rounduppay/core/pkg/money"
)

func tx(id string, amount money.Cents, date string, pending bool) model.RawTransaction {
	return model.RawTransaction{ID: id, Amount: amount, Date: date, Pending: pending, Name: "merchant"}
}

func TestEligible(t *testing.T) {
	cases := []struct {
		name string
		tx   model.RawTransaction
		want bool
	}{
		{"eligible debit", tx("t1", 123, "2026-07-30", false), true},
		{"pending rejected", tx("t2", 123, "2026-07-30", true), false},
		{"non-debit rejected", tx("t3", -123, "2026-07-30", false), false},
		{"zero amount rejected", tx("t4", 0, "2026-07-30", false), false},
		{"bad date rejected", tx("t5", 123, "07-30-2026", false), false},
		{"empty id rejected", tx("", 123, "2026-07-30", false), false},
		{"empty date rejected", tx("t6", 123, "", false), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Eligible(tc.tx); got != tc.want {
				t.Errorf("Eligible(%+v) = %v, want %v", tc.tx, got, tc.want)
			}
		})
	}
}

func TestFilter_OrderPreserving(t *testing.T) {
	in := []model.RawTransaction{
		tx("a", 100, "2026-07-01", false),
		tx("b", 100, "2026-07-02", true), // dropped
		tx("c", -50, "2026-07-03", false), // dropped
		tx("d", 200, "2026-07-04", false),
	}
	got := Filter(in)
	if len(got) != 2 {
		t.Fatalf("Filter() returned %d transactions, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "d" {
		t.Errorf("Filter() did not preserve order: got ids %s, %s", got[0].ID, got[1].ID)
	}
}

func TestFilter_Monotonicity(t *testing.T) {
	t1 := []model.RawTransaction{
		tx("a", 100, "2026-07-01", false),
		tx("b", 100, "2026-07-02", true),
	}
	t2 := []model.RawTransaction{
		tx("c", 200, "2026-07-03", false),
		tx("d", -1, "2026-07-04", false),
	}

	combined := append(append([]model.RawTransaction{}, t1...), t2...)

	want := append(Filter(t1), Filter(t2)...)
	got := Filter(combined)

	if len(got) != len(want) {
		t.Fatalf("Filter(T1++T2) len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("Filter(T1++T2)[%d].ID = %s, want %s", i, got[i].ID, want[i].ID)
		}
	}
}

func TestValidDate(t *testing.T) {
	if !ValidDate("2026-07-31") {
		t.Error("expected 2026-07-31 to be valid")
	}
	if ValidDate("2026/07/31") {
		t.Error("expected 2026/07/31 to be invalid")
	}
	if ValidDate("") {
		t.Error("expected empty string to be invalid")
	}
}
