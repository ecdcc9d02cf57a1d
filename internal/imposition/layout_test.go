package imposition

import (
	"errors"
	"testing"
)

func TestPaddedPageCount(t *testing.T) {
	for n := 1; n <= 64; n++ {
		p := PaddedPageCount(n)
		if p%2 != 0 {
			t.Errorf("PaddedPageCount(%d) = %d, want even", n, p)
		}
		if p != n && p != n+1 {
			t.Errorf("PaddedPageCount(%d) = %d, want %d or %d", n, p, n, n+1)
		}
	}
}

func TestPagePair_WorkedExample(t *testing.T) {
	// 16 pages, 4 pages per sheet, 1 sheet per signature.
	l, err := NewLayout(16, 4, 1)
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	if l.PaddedPageCount != 16 || l.MaxPagesPerSignature != 4 || l.MagicNumber != 5 || l.SignatureCount != 4 {
		t.Fatalf("layout = %+v", l)
	}
	if l.SheetsPerSignatureOutput() != 2 {
		t.Fatalf("SheetsPerSignatureOutput() = %d, want 2", l.SheetsPerSignatureOutput())
	}

	want := [][2][2]int{
		{{4, 1}, {2, 3}},
		{{8, 5}, {6, 7}},
		{{12, 9}, {10, 11}},
		{{16, 13}, {14, 15}},
	}
	for sig, sheets := range want {
		for pos, pair := range sheets {
			left, right := PagePair(pos, l.FirstPageOf(sig), l.MagicNumber)
			if left != pair[0] || right != pair[1] {
				t.Errorf("signature %d sheet %d = (%d,%d), want (%d,%d)",
					sig, pos, left, right, pair[0], pair[1])
			}
		}
	}
}

func TestPagePair_SixteenPageSignature(t *testing.T) {
	// One 16-page signature: outermost sheet carries 16 and 1.
	want := [][2]int{
		{16, 1}, {2, 15}, {14, 3}, {4, 13},
		{12, 5}, {6, 11}, {10, 7}, {8, 9},
	}
	for pos, pair := range want {
		left, right := PagePair(pos, 0, 17)
		if left != pair[0] || right != pair[1] {
			t.Errorf("sheet %d = (%d,%d), want (%d,%d)", pos, left, right, pair[0], pair[1])
		}
	}
}

func TestPagePair_Symmetry(t *testing.T) {
	for _, tc := range []struct{ pps, sps int }{{4, 1}, {4, 4}, {4, 8}, {2, 9}, {8, 2}} {
		magic := tc.pps*tc.sps + 1
		for sig := 0; sig < 5; sig++ {
			first := sig * tc.pps * tc.sps
			for pos := 0; pos < tc.pps*tc.sps/2; pos++ {
				left, right := PagePair(pos, first, magic)
				if left+right != magic+2*first {
					t.Errorf("pps=%d sps=%d sig=%d pos=%d: %d+%d != %d",
						tc.pps, tc.sps, sig, pos, left, right, magic+2*first)
				}
				if left <= first || right <= first || left > first+magic-1 || right > first+magic-1 {
					t.Errorf("pps=%d sps=%d sig=%d pos=%d: (%d,%d) outside signature range",
						tc.pps, tc.sps, sig, pos, left, right)
				}
			}
		}
	}
}

func TestPagePair_CoversSignatureOnce(t *testing.T) {
	const pps, sps = 4, 3
	max := pps * sps
	for sig := 0; sig < 3; sig++ {
		first := sig * max
		seen := make(map[int]bool)
		for pos := 0; pos < max/2; pos++ {
			left, right := PagePair(pos, first, max+1)
			for _, p := range []int{left, right} {
				if seen[p] {
					t.Errorf("signature %d: page %d appears twice", sig, p)
				}
				seen[p] = true
			}
		}
		for p := first + 1; p <= first+max; p++ {
			if !seen[p] {
				t.Errorf("signature %d: page %d missing", sig, p)
			}
		}
	}
}

func TestSignatureCount(t *testing.T) {
	tests := []struct {
		padded, pps, sps int
		want             int
	}{
		{16, 4, 1, 4},
		{18, 4, 1, 5},
		{16, 4, 4, 1},
		{18, 4, 4, 2},
		{100, 4, 8, 4},
		{96, 4, 8, 3},
	}
	for _, tt := range tests {
		if got := SignatureCount(tt.padded, tt.pps, tt.sps); got != tt.want {
			t.Errorf("SignatureCount(%d, %d, %d) = %d, want %d", tt.padded, tt.pps, tt.sps, got, tt.want)
		}
	}
}

func TestSignatureCount_Monotonic(t *testing.T) {
	for _, tc := range []struct{ pps, sps int }{{4, 1}, {4, 4}, {2, 3}, {8, 2}} {
		prev := 0
		for n := 1; n <= 200; n++ {
			got := SignatureCount(PaddedPageCount(n), tc.pps, tc.sps)
			if got < prev {
				t.Errorf("pps=%d sps=%d: count fell from %d to %d at %d pages", tc.pps, tc.sps, prev, got, n)
			}
			prev = got
		}
	}
}

func TestNewLayout_Shortfall(t *testing.T) {
	_, err := NewLayout(13, 4, 4)
	if err == nil {
		t.Fatal("NewLayout() should reject 14 padded pages for a 16-page signature")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("error %v should match ErrConfiguration", err)
	}
	var shortfall *ShortfallError
	if !errors.As(err, &shortfall) {
		t.Fatalf("error %T should be *ShortfallError", err)
	}
	if shortfall.Required != 16 || shortfall.Available != 14 {
		t.Errorf("shortfall = %+v, want required 16 available 14", shortfall)
	}
}

func TestNewLayout_ExactFit(t *testing.T) {
	// 15 pages pad to 16 which fills one 16-page signature.
	l, err := NewLayout(15, 4, 4)
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	if l.SignatureCount != 1 {
		t.Errorf("SignatureCount = %d, want 1", l.SignatureCount)
	}
}
