package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_CSVToPDF(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "cards.csv")
	cfgPath := filepath.Join(dir, "design.json")
	out := filepath.Join(dir, "out", "cards.pdf")

	csv := "artist,title,year,qr_url\nAir,La Femme d'Argent,1998,https://example.com/1\nMassive Attack,Teardrop,1998,\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfgPath, []byte(`{"vinyl":{"style":"classic","seed":7}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(csvPath, cfgPath, out, 0.25, 0, false, true); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil || !strings.HasPrefix(string(b), "%PDF-") {
		t.Fatalf("output is not a pdf: %v", err)
	}
	m, err := os.ReadFile(filepath.Join(dir, "out", "cards.txt"))
	if err != nil || !strings.Contains(string(m), "front 1: 1 2") {
		t.Errorf("manifest = %q, %v", m, err)
	}

	if err := run(csvPath, "", out, 0.25, 0, true, false); err == nil {
		t.Error("strict mode should reject the record without a URL")
	}
}
