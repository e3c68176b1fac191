package utils

import "testing"

func TestComputeFareBreakdown(t *testing.T) {
	fb := ComputeFareBreakdown(150000, 3)
	if fb.Fare != 450000 {
		t.Fatalf("fare = %d, want 450000", fb.Fare)
	}
	if fb.Fees != 15000 {
		t.Fatalf("fees = %d, want 15000", fb.Fees)
	}
	if fb.Total != 465000 {
		t.Fatalf("total = %d, want 465000", fb.Total)
	}
}

func TestComputeFareBreakdownNegativeSeatCount(t *testing.T) {
	fb := ComputeFareBreakdown(150000, -2)
	if fb.Fare != 0 || fb.Fees != 0 || fb.Total != 0 {
		t.Fatalf("negative seat count should price to zero, got %+v", fb)
	}
}

func TestNormalizeSeatSet(t *testing.T) {
	out := NormalizeSeatSet([]string{" a1", "B2", "a1", "", "12"})
	want := []string{"12", "A1", "B2"}
	if len(out) != len(want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("got %v, want %v", out, want)
		}
	}
}

func TestSplitSeatList(t *testing.T) {
	out := SplitSeatList("a1, b2;c3\n ,")
	want := []string{"A1", "B2", "C3"}
	if len(out) != len(want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("got %v, want %v", out, want)
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	if got := FormatRupiah(1250000); got != "Rp1.250.000" {
		t.Fatalf("FormatRupiah = %q", got)
	}
	if got := FormatRupiah(0); got != "Rp0" {
		t.Fatalf("FormatRupiah zero = %q", got)
	}
	if got := FormatRupiah(-5000); got != "-Rp5.000" {
		t.Fatalf("FormatRupiah negative = %q", got)
	}
}
