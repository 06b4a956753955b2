package main

// #region imports
import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/caseline/caseline/internal/casestore"
	"github.com/caseline/caseline/internal/config"
	"github.com/caseline/caseline/internal/embed"
)

// #endregion

func init() {
	godotenv.Load()
}

// #region main

// reembed recomputes every stored case's embedding against the currently
// configured provider. Needed after switching models: vectors from different
// models are not comparable, so a mixed store would rank garbage.
func main() {
	configPath := flag.String("config", "", "path to caseline.yaml")
	workers := flag.Int("workers", 4, "concurrent embedding requests")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	embedder, err := embed.New(cfg.Embed)
	if err != nil {
		log.Fatalf("embedding provider: %v", err)
	}

	store := casestore.Open(cfg.Store, embedder)
	cases := store.All()
	if len(cases) == 0 {
		fmt.Fprintln(os.Stderr, "case store is empty, nothing to re-embed")
		os.Exit(0)
	}

	fmt.Printf("re-embedding %d cases with %s/%s (%d workers)\n",
		len(cases), cfg.Embed.Provider, cfg.Embed.Model, *workers)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)
	for _, c := range cases {
		c := c
		g.Go(func() error {
			vec, err := embedder.Embed(ctx, c.SourceText)
			if err != nil {
				return fmt.Errorf("case %d: %w", c.ID, err)
			}
			if !store.Replace(c.ID, vec) {
				return fmt.Errorf("case %d vanished during re-embed", c.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Partial progress is persisted; rerun resumes safely since
		// re-embedding is idempotent.
		log.Fatalf("re-embed failed: %v", err)
	}

	fmt.Printf("done: %d cases updated in %s\n", len(cases), cfg.Store.Path)
}

// #endregion main
