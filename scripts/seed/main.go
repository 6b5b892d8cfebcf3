// Command seed loads athletic-program targets into the CoachScout store
// from a CSV file so a batch run has schools to process.
//
// CSV columns: id,name,base_url (no header handling: lines whose first
// field is not an integer are skipped).
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/coachscout/coachscout/models"
	"github.com/coachscout/coachscout/store"
)

// CLI flags
var (
	dbPath = flag.String("db", "coachscout.db", "SQLite database path")
	csvIn  = flag.String("csv", "targets.csv", "CSV file of targets (id,name,base_url)")
)

func main() {
	flag.Parse()

	f, err := os.Open(*csvIn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open csv: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	st, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3

	ctx := context.Background()
	loaded, skipped := 0, 0
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}

		id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			skipped++
			continue
		}

		target := models.Target{
			ID:          id,
			DisplayName: strings.TrimSpace(record[1]),
			BaseURL:     strings.TrimSpace(record[2]),
		}
		if target.DisplayName == "" || !strings.HasPrefix(target.BaseURL, "http") {
			skipped++
			continue
		}

		if err := st.AddTarget(ctx, target); err != nil {
			fmt.Fprintf(os.Stderr, "add target %d (%s): %v\n", id, target.DisplayName, err)
			os.Exit(1)
		}
		loaded++
	}

	fmt.Printf("seeded %d targets (%d rows skipped) into %s\n", loaded, skipped, *dbPath)
}
