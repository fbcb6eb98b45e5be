package cards

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// headerAliases maps normalized spreadsheet headers onto record fields.
var headerAliases = map[string]string{
	"artist":      "artist",
	"artist name": "artist",
	"performer":   "artist",
	"title":       "title",
	"song":        "title",
	"track":       "title",
	"year":        "year",
	"release":     "year",
	"fact":        "fact",
	"qr_url":      "qr_url",
	"qr url":      "qr_url",
	"qr":          "qr_url",
	"url":         "qr_url",
	"link":        "qr_url",
	"code1":       "code1",
	"code 1":      "code1",
	"code2":       "code2",
	"code 2":      "code2",
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "-", "_")
	if f, ok := headerAliases[h]; ok {
		return f
	}
	return h
}

// LoadRecordsFromDataDir loads cards.csv from a data directory.
func LoadRecordsFromDataDir(dataDir string) ([]Record, error) {
	path := filepath.Join(dataDir, "cards.csv")
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fp.Close()

	recs, err := LoadRecordsCSV(fp)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return recs, nil
}

// LoadRecordsCSV parses CSV with a header row into records. Both comma and
// semicolon separated files are accepted; rows with no values are skipped.
func LoadRecordsCSV(r io.Reader) ([]Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(strings.NewReader(string(raw)))
	cr.FieldsPerRecord = -1
	cr.Comma = sniffComma(raw)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv has no header")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		name := normalizeHeader(h)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	if _, ok := cols["artist"]; !ok {
		return nil, fmt.Errorf("csv header has no artist column")
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []Record{}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		out = append(out, Record{
			Artist: get(row, "artist"),
			Title:  get(row, "title"),
			Year:   get(row, "year"),
			Fact:   get(row, "fact"),
			QRURL:  get(row, "qr_url"),
			Code1:  get(row, "code1"),
			Code2:  get(row, "code2"),
		})
	}
	return out, nil
}

func sniffComma(raw []byte) rune {
	line := string(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
