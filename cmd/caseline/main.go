package main

// #region imports
import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/caseline/caseline/internal/casestore"
	"github.com/caseline/caseline/internal/confidence"
	"github.com/caseline/caseline/internal/config"
	"github.com/caseline/caseline/internal/embed"
	"github.com/caseline/caseline/internal/evaluation"
	"github.com/caseline/caseline/internal/knowledge"
	"github.com/caseline/caseline/internal/policy"
	"github.com/caseline/caseline/internal/provlog"
	"github.com/caseline/caseline/internal/retrieval"
)

// #endregion

func init() {
	godotenv.Load()
}

// #region main
func main() {
	configPath := flag.String("config", "", "path to caseline.yaml")
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

	judgments, err := evaluation.Open(cfg.EvalDBPath)
	if err != nil {
		log.Fatalf("open evaluation db: %v", err)
	}
	defer judgments.Close()
	if err := provlog.Init(judgments.DB()); err != nil {
		log.Fatalf("init decision log: %v", err)
	}

	var evidence knowledge.Source
	if cfg.Knowledge.Enabled {
		evidence = knowledge.NewHTTPSource(cfg.Knowledge)
	}

	engine := policy.NewEngine(policy.Deps{
		Store:     store,
		Retriever: retrieval.NewRetriever(store, embedder, cfg.Retrieval),
		Assessor:  confidence.NewAssessor(cfg.Confidence),
		Evidence:  evidence,
		Judgments: judgments,
		LogDB:     judgments.DB(),
	})

	fmt.Println("Caseline intake triage ready.")
	fmt.Printf("  store: %s (%d cases) | db: %s | embeddings: %s/%s\n",
		cfg.Store.Path, store.Count(), cfg.EvalDBPath, cfg.Embed.Provider, cfg.Embed.Model)
	fmt.Println("Describe symptoms, or: feedback <label> | stats | accuracy | reset | quit")

	runREPL(engine, store, judgments)
}

// #endregion main

// #region repl

func runREPL(engine *policy.Engine, store *casestore.Store, judgments *evaluation.Store) {
	scanner := bufio.NewScanner(os.Stdin)
	var pending *policy.Interaction

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "quit" || line == "exit":
			return
		case line == "stats":
			printStats(store, judgments)
		case line == "accuracy":
			printAccuracy(judgments)
		case line == "reset":
			store.Reset()
			fmt.Println("case store cleared")
		case strings.HasPrefix(line, "feedback "):
			pending = submitFeedback(engine, pending, strings.TrimSpace(strings.TrimPrefix(line, "feedback ")))
		default:
			pending = runQuery(engine, line)
		}
	}
}

func runQuery(engine *policy.Engine, text string) *policy.Interaction {
	in := policy.NewInteraction("")
	in.AddMessage("user", text)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	d, err := engine.Decide(ctx, in)
	if err != nil {
		log.Printf("decide error: %v", err)
		return nil
	}

	fmt.Printf("\nsimilar cases: %d | confidence: case=%.2f blended=%.2f\n",
		d.SimilarCount, d.Confidence.CaseConfidence, d.Confidence.Blended)
	for _, rf := range d.RedFlags {
		fmt.Printf("  RED FLAG [%s]: %q\n", rf.Category, rf.Phrase)
	}
	if len(d.Exemplars) > 0 {
		fmt.Println(retrieval.FormatFewShot(d.Exemplars))
	}
	if len(d.Evidence.Citations) > 0 {
		fmt.Println(knowledge.FormatAsEvidence(d.Evidence))
	}
	if d.Escalate {
		fmt.Printf("ESCALATE: %s\n", d.Reason)
		if d.PredictedLabel != "" {
			fmt.Printf("  tentative prediction for the reviewer: %s\n", d.PredictedLabel)
		}
		fmt.Println("  awaiting human label ('feedback <label>')")
		return in
	}
	fmt.Printf("AUTONOMOUS: %s\n\n", d.Reason)
	return nil
}

func submitFeedback(engine *policy.Engine, in *policy.Interaction, label string) *policy.Interaction {
	if in == nil {
		fmt.Println("no escalated query awaiting feedback")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	res, err := engine.SubmitFeedback(ctx, in, label)
	if err != nil {
		log.Printf("feedback error: %v", err)
		return in
	}
	if res.CaseStored {
		fmt.Printf("stored labeled case (%s), match=%v\n", label, res.Match)
	} else {
		fmt.Printf("judgment recorded, case not stored (duplicate session), match=%v\n", res.Match)
	}
	return nil
}

func printStats(store *casestore.Store, judgments *evaluation.Store) {
	st := store.Stats()
	fmt.Printf("cases: %d\n", st.TotalCases)
	for label, n := range st.CountsByLabel {
		fmt.Printf("  %-12s %d\n", label, n)
	}
	sum, err := judgments.Summarize()
	if err != nil {
		log.Printf("summarize error: %v", err)
		return
	}
	fmt.Printf("judgments: %d (%.0f%% correct)\n", sum.Total, sum.Accuracy*100)
}

func printAccuracy(judgments *evaluation.Store) {
	points, err := judgments.AccuracyHistory()
	if err != nil {
		log.Printf("accuracy error: %v", err)
		return
	}
	if len(points) == 0 {
		fmt.Println("no judgments yet")
		return
	}
	for _, p := range points {
		fmt.Printf("  after %3d: %.2f\n", p.N, p.Accuracy)
	}
}

// #endregion repl
