package passage

import "testing"

func TestBaseName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"products/reserve-cabernet-franc-2021.md", "reserve-cabernet-franc"},
		{"products/Reserve-Cabernet-Franc-2019_a1b2c3d4e5.md", "reserve-cabernet-franc"},
		{`kb\wines\dry-rose-2022.md`, "dry-rose"},
		{"sparkling-rose-nv", "sparkling-rose"},
		{"sparkling-rose-non-vintage.html", "sparkling-rose"},
		{"meritage-2020-123456.md", "meritage"},
		{"vidal-ice-wine-2021.md", "vidal-ice"},
		{"faq/visiting.md", "visiting"},
	}
	for _, tc := range tests {
		if got := BaseName(tc.in); got != tc.want {
			t.Errorf("BaseName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEntityKey(t *testing.T) {
	if got := EntityKey("Dry Rosé 2022"); got != "dry-rose" {
		t.Errorf("unexpected key %q", got)
	}
	if got, want := EntityKey("Reserve Cabernet Franc 2021"), BaseName("reserve-cabernet-franc-2019.md"); got != want {
		t.Errorf("EntityKey %q != BaseName %q", got, want)
	}
	if got := EntityKey("Wine"); got != "wine" {
		t.Errorf("a lone suffix is kept, got %q", got)
	}
}
