// Command cardsheet renders a CSV of records into a printable PDF.
//
//	cardsheet -csv data/cards.csv -config sonicstencil_config.json -out cards.pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	config "github.com/youruser/sonicstencil/configs"
	"github.com/youruser/sonicstencil/internal/cards"
	"github.com/youruser/sonicstencil/internal/deck"
	"github.com/youruser/sonicstencil/internal/design"
	"github.com/youruser/sonicstencil/internal/util"
)

func main() {
	csvPath := flag.String("csv", "", "CSV file with artist,title,year,qr_url columns (optional in token mode)")
	cfgPath := flag.String("config", "", "design config JSON (defaults when empty)")
	out := flag.String("out", deck.Filename, "output PDF path")
	scale := flag.Float64("scale", deck.DefaultScale, "raster pixels per card pixel")
	settle := flag.Duration("settle", 0, "delay before each page capture")
	strict := flag.Bool("strict", false, "require qr_url on every record")
	manifest := flag.Bool("manifest", false, "write a page manifest next to the PDF")
	flag.Parse()

	config.LoadEnv("cardsheet")
	if os.Getenv("LOG_STDOUT") == "" {
		os.Setenv("LOG_STDOUT", "1")
	}
	config.Logging("cardsheet")

	if err := run(*csvPath, *cfgPath, *out, *scale, *settle, *strict, *manifest); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(csvPath, cfgPath, out string, scale float64, settle time.Duration, strict, manifest bool) error {
	cfg := design.Default()
	if cfgPath != "" {
		raw, err := os.ReadFile(cfgPath)
		if err != nil {
			return err
		}
		if cfg, err = design.Load(raw); err != nil {
			return fmt.Errorf("%s: %w", cfgPath, err)
		}
	}

	var recs []cards.Record
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return err
		}
		recs, err = cards.LoadRecordsCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", csvPath, err)
		}
		if strict {
			if err := cards.Validate(recs, true); err != nil {
				return fmt.Errorf("%s: %w", csvPath, err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	doc, err := deck.Export(ctx, recs, cfg, deck.Options{
		Scale:  scale,
		Settle: settle,
		OnProgress: func(p deck.Progress) {
			log.Infof("%3d%% %s", p.Percentage, p.Message)
		},
	})
	if err != nil {
		return err
	}
	if err := util.WriteFileAtomic(out, doc.Bytes); err != nil {
		return err
	}
	log.Infof("wrote %s (%d pages)", out, doc.PageCount())
	if manifest {
		path := out[:len(out)-len(filepath.Ext(out))] + ".txt"
		if err := util.WriteFileAtomic(path, []byte(deck.Manifest(doc))); err != nil {
			return err
		}
	}
	return nil
}
