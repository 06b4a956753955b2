package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/caseline/caseline/internal/casestore"
	"github.com/caseline/caseline/internal/config"
	"github.com/caseline/caseline/internal/evaluation"
	"github.com/caseline/caseline/internal/provlog"
)

// #endregion

// #region main

func main() {
	configPath := flag.String("config", "", "path to caseline.yaml")
	cases := flag.Bool("cases", false, "list stored cases")
	decisions := flag.Int("decisions", 0, "show N most recent gate decisions")
	accuracy := flag.Bool("accuracy", false, "show cumulative accuracy history")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Read-only inspection: no embedder needed, inserts never happen here.
	store := casestore.Open(cfg.Store, nil)

	switch {
	case *cases:
		err = runCases(store, *jsonOut)
	case *decisions > 0:
		err = runDecisions(cfg.EvalDBPath, *decisions, *jsonOut)
	case *accuracy:
		err = runAccuracy(cfg.EvalDBPath, *jsonOut)
	default:
		err = runStats(store, cfg.EvalDBPath, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region modes

func runStats(store *casestore.Store, dbPath string, jsonOut bool) error {
	st := store.Stats()
	judgments, err := evaluation.Open(dbPath)
	if err != nil {
		return err
	}
	defer judgments.Close()
	sum, err := judgments.Summarize()
	if err != nil {
		return err
	}

	if jsonOut {
		return encode(struct {
			Store     casestore.Stats    `json:"store"`
			Judgments evaluation.Summary `json:"judgments"`
		}{st, sum})
	}
	fmt.Printf("cases: %d\n", st.TotalCases)
	for label, n := range st.CountsByLabel {
		fmt.Printf("  %-14s %d\n", label, n)
	}
	fmt.Printf("judgments: %d  accuracy: %.2f\n", sum.Total, sum.Accuracy)
	for label, ls := range sum.ByLabel {
		fmt.Printf("  %-14s %d/%d\n", label, ls.Correct, ls.Total)
	}
	return nil
}

func runCases(store *casestore.Store, jsonOut bool) error {
	all := store.All()
	if jsonOut {
		return encode(all)
	}
	if len(all) == 0 {
		fmt.Fprintln(os.Stderr, "no cases stored")
		return nil
	}
	for _, c := range all {
		fmt.Printf("[%3d] %-12s dim=%-4d %s  %s\n",
			c.ID, c.Label, len(c.Embedding), c.CreatedAt.Format("2006-01-02T15:04:05Z"), c.Summary)
	}
	return nil
}

func runDecisions(dbPath string, n int, jsonOut bool) error {
	judgments, err := evaluation.Open(dbPath)
	if err != nil {
		return err
	}
	defer judgments.Close()
	if err := provlog.Init(judgments.DB()); err != nil {
		return err
	}
	entries, err := provlog.Recent(judgments.DB(), n)
	if err != nil {
		return err
	}
	if jsonOut {
		return encode(entries)
	}
	for _, e := range entries {
		fmt.Printf("%s  %-10s similar=%-3d conf=%.2f pred=%-12s %s\n",
			e.CreatedAt.Format("2006-01-02T15:04:05Z"), e.Decision, e.SimilarCount,
			e.CaseConfidence, e.PredictedLabel, e.Reason)
	}
	return nil
}

func runAccuracy(dbPath string, jsonOut bool) error {
	judgments, err := evaluation.Open(dbPath)
	if err != nil {
		return err
	}
	defer judgments.Close()
	points, err := judgments.AccuracyHistory()
	if err != nil {
		return err
	}
	if jsonOut {
		return encode(points)
	}
	if len(points) == 0 {
		fmt.Fprintln(os.Stderr, "no judgments recorded")
		return nil
	}
	for _, p := range points {
		fmt.Printf("%4d  %.3f\n", p.N, p.Accuracy)
	}
	return nil
}

func encode(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion modes
