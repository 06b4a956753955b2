package main

// #region imports
import (
	"flag"
	"fmt"
	"os"

	"github.com/caseline/caseline/internal/replay"
)

// #endregion

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	f, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(2)
	}
	if f.Description != "" {
		fmt.Println(f.Description)
		fmt.Println()
	}

	results, summary, err := replay.Run(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(2)
	}

	os.Exit(printResults(results, summary))
}

// #endregion main

// #region output

func printResults(results []replay.StepResult, summary replay.Summary) int {
	fmt.Printf("%-28s| %-10s| %-12s| %-8s| %s\n", "Step", "Gate", "Predicted", "Similar", "Check")
	fmt.Printf("%-28s+%-11s+%-13s+%-9s+%s\n",
		"----------------------------", "-----------", "-------------", "---------", "------")

	for _, r := range results {
		gate := "proceed"
		if r.Escalated {
			gate = "escalate"
		}
		check := "OK"
		if !r.Pass {
			check = "DIFF"
		}
		fmt.Printf("%-28s| %-10s| %-12s| %-8d| %s\n", r.StepID, gate, r.PredictedLabel, r.SimilarCount, check)
		if !r.Pass {
			fmt.Printf("    %s\n", r.Reason)
		}
	}

	fmt.Printf("\nSummary: %d steps, %d passed, %d diverged | %d escalations, %d autonomous | %d cases in store\n",
		summary.TotalSteps, summary.Passed, summary.Failed,
		summary.Escalations, summary.Autonomous, summary.FinalCaseCount)

	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion output
