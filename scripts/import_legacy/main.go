// Command import_legacy loads a report collection exported from the legacy
// browser client (a JSON dump of the tutor_reports_v1 storage slot) into the
// file slot used by the API. Records missing an id are backfilled the same
// way the server does on load.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/tutortrack/tutortrack-api/internal/models"
	"github.com/tutortrack/tutortrack-api/pkg/storage"
)

func main() {
	var (
		inputPath string
		slotPath  string
		merge     bool
		dryRun    bool
	)

	flag.StringVar(&inputPath, "input", "", "Path to the legacy JSON dump")
	flag.StringVar(&slotPath, "slot", "./data/tutor_reports_v1.json", "Path to the report slot file")
	flag.BoolVar(&merge, "merge", false, "Prepend imported records to an existing slot instead of replacing it")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate and report without writing")
	flag.Parse()

	if inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		log.Fatalf("failed to read input: %v", err)
	}

	var imported []models.Report
	if err := json.Unmarshal(data, &imported); err != nil {
		log.Fatalf("input is not a report collection: %v", err)
	}

	backfilled := 0
	for i := range imported {
		if imported[i].ID == "" {
			imported[i].ID = uuid.NewString()
			backfilled++
		}
		if !models.ValidSubject(imported[i].Subject) {
			log.Fatalf("record %d has unknown subject %q", i, imported[i].Subject)
		}
	}

	slot, err := storage.NewFileSlot(slotPath)
	if err != nil {
		log.Fatalf("failed to open slot: %v", err)
	}

	ctx := context.Background()
	out := imported
	if merge {
		existing, ok, err := slot.Read(ctx)
		if err != nil {
			log.Fatalf("failed to read existing slot: %v", err)
		}
		if ok {
			var current []models.Report
			if err := json.Unmarshal(existing, &current); err != nil {
				log.Fatalf("existing slot is corrupt: %v", err)
			}
			out = append(imported, current...)
		}
	}

	fmt.Printf("importing %d records (%d ids backfilled) into %s\n", len(imported), backfilled, slotPath)
	if dryRun {
		fmt.Println("dry run, nothing written")
		return
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		log.Fatalf("failed to encode collection: %v", err)
	}
	if err := slot.Write(ctx, encoded); err != nil {
		log.Fatalf("failed to write slot: %v", err)
	}
	fmt.Printf("slot now holds %d records\n", len(out))
}
