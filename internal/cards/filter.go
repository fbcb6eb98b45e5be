package cards

import (
	"strconv"
	"strings"
)

type FilterOptions struct {
	FreeWords string   `json:"free_words"`
	Artists   []string `json:"artists"`
	YearFrom  int      `json:"year_from"`
	YearTo    int      `json:"year_to"`
	WithQR    bool     `json:"with_qr"`
}

func containsAny(hay string, needles []string) bool {
	hay = strings.ToLower(hay)
	for _, n := range needles {
		if strings.Contains(hay, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Filter returns the records matching every set option, in input order.
func Filter(records []Record, opt FilterOptions) []Record {
	out := []Record{}
	for _, r := range records {
		if opt.WithQR && r.QRURL == "" {
			continue
		}
		if len(opt.Artists) > 0 && !containsAny(r.Artist, opt.Artists) {
			continue
		}
		if opt.YearFrom > 0 || opt.YearTo > 0 {
			y, err := strconv.Atoi(strings.TrimSpace(r.Year))
			if err != nil {
				continue
			}
			if opt.YearFrom > 0 && y < opt.YearFrom {
				continue
			}
			if opt.YearTo > 0 && y > opt.YearTo {
				continue
			}
		}
		if opt.FreeWords != "" {
			ok := true
			for _, k := range strings.Fields(opt.FreeWords) {
				k = strings.ToLower(k)
				if !strings.Contains(strings.ToLower(r.Artist), k) &&
					!strings.Contains(strings.ToLower(r.Title), k) &&
					!strings.Contains(strings.ToLower(r.Fact), k) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
