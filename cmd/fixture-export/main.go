package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/caseline/caseline/internal/casestore"
	"github.com/caseline/caseline/internal/config"
	"github.com/caseline/caseline/internal/replay"
)

// #endregion

// #region main

func main() {
	configPath := flag.String("config", "", "path to caseline.yaml")
	outPath := flag.String("out", "", "output fixture JSON path")
	desc := flag.String("desc", "exported from live case store", "fixture description")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --out path/to/fixture.json [--config caseline.yaml] [--desc text]")
		os.Exit(2)
	}

	if err := run(*configPath, *outPath, *desc); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

// run snapshots the live store into a replay fixture. Stored embeddings come
// along verbatim, so the exported fixture replays without a provider. Steps
// are left empty for the author to script against the seeded corpus.
func run(configPath, outPath, desc string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store := casestore.Open(cfg.Store, nil)
	cases := store.All()
	if len(cases) == 0 {
		return fmt.Errorf("case store %s is empty, nothing to export", cfg.Store.Path)
	}

	f := replay.Fixture{
		Description: desc,
		Config: replay.FixtureConfig{
			SimilarityThreshold:   cfg.Retrieval.SimilarityThreshold,
			TopK:                  cfg.Retrieval.TopK,
			MinCasesForConfidence: cfg.Confidence.MinCasesForConfidence,
		},
		SeedCases: make([]replay.SeedCase, 0, len(cases)),
		Steps:     []replay.Step{},
	}
	for _, c := range cases {
		f.SeedCases = append(f.SeedCases, replay.SeedCase{
			Text:       c.SourceText,
			Label:      c.Label,
			Summary:    c.Summary,
			SessionRef: c.SessionRef,
			Embedding:  c.Embedding,
		})
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}

	fmt.Printf("exported %d cases to %s\n", len(f.SeedCases), outPath)
	return nil
}

// #endregion export
