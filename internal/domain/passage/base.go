package passage

import (
	"path"
	"regexp"
	"strings"

	"github.com/kailas-cloud/sommelier/internal/domain/fold"
)

var (
	hexRunRe   = regexp.MustCompile(`^[0-9a-f]{8,}$`)
	digitRunRe = regexp.MustCompile(`^\d{5,}$`)
)

// displaySuffixes are trailing words that do not distinguish entities.
var displaySuffixes = map[string]bool{
	"wine": true, "bottle": true, "750ml": true, "375ml": true,
}

// BaseName derives the normalized entity name shared by every variant of a source:
// directory, extension, vintage years, non-vintage markers and generated ids are dropped.
// "products/Reserve-Cabernet-Franc-2021_a1b2c3d4e5.md" becomes "reserve-cabernet-franc".
func BaseName(sourceID string) string {
	s := strings.ReplaceAll(sourceID, `\`, "/")
	s = path.Base(s)
	s = strings.TrimSuffix(s, path.Ext(s))
	return normalizeWords(fold.Words(fold.String(s)))
}

// EntityKey normalizes a display name ("Dry Rosé 2022 Wine") to the same form BaseName
// produces for its source ("dry-rose").
func EntityKey(name string) string {
	return normalizeWords(fold.Words(fold.String(name)))
}

func normalizeWords(words []string) string {
	kept := words[:0:0]
	for _, w := range words {
		switch {
		case yearRe.MatchString(w) && len(w) == 4:
			continue
		case w == "nv":
			continue
		case digitRunRe.MatchString(w):
			continue
		case hexRunRe.MatchString(w) && strings.ContainsAny(w, "0123456789"):
			continue
		}
		kept = append(kept, w)
	}
	// "non vintage" spans two words after folding
	out := kept[:0:0]
	for i := 0; i < len(kept); i++ {
		if kept[i] == "non" && i+1 < len(kept) && kept[i+1] == "vintage" {
			i++
			continue
		}
		out = append(out, kept[i])
	}
	for len(out) > 1 && displaySuffixes[out[len(out)-1]] {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "-")
}
