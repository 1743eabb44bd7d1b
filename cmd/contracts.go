package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/NeurArk/ai-contract-guardian/client"
	"github.com/NeurArk/ai-contract-guardian/contracts"
	"github.com/NeurArk/ai-contract-guardian/model"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireAuth(cmd)
		if err != nil {
			return err
		}

		list, err := a.contracts.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "Failed to list contracts"))
		}
		if len(list) == 0 {
			fmt.Println("No contracts yet. Upload one with 'guardian upload <file>'.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFILENAME\tSTATUS\tUPLOADED")
		for _, c := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Filename, c.Status, c.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <contract-id>",
	Short: "Show a contract and its analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireAuth(cmd)
		if err != nil {
			return err
		}

		contract, err := a.contracts.Get(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("contract %s not found", args[0])
			}
			return fmt.Errorf("%s", client.ErrorMessage(err, "Failed to fetch contract"))
		}

		fmt.Printf("Contract:  %s\n", contract.Filename)
		fmt.Printf("ID:        %s\n", contract.ID)
		fmt.Printf("Size:      %d bytes (%s)\n", contract.FileSize, contract.FileType)
		fmt.Printf("Status:    %s\n", contract.Status)
		fmt.Printf("Uploaded:  %s\n", contract.CreatedAt.Format("2006-01-02 15:04:05"))

		if contract.Status != model.StatusCompleted {
			if contract.Status == model.StatusFailed {
				if status, err := a.contracts.Status(cmd.Context(), contract.ID); err == nil && status.ErrorMessage != "" {
					fmt.Printf("Error:     %s\n", status.ErrorMessage)
				}
			}
			return nil
		}

		analysis, err := a.contracts.Analysis(cmd.Context(), contract.ID)
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "Failed to fetch analysis"))
		}
		printAnalysis(analysis)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <contract-id>",
	Short: "Follow an analysis until it finishes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireAuth(cmd)
		if err != nil {
			return err
		}
		return watchContract(cmd, a, args[0])
	},
}

// watchContract polls the contract status until a terminal state and
// prints the outcome. Ctrl-C cancels cleanly through the command
// context.
func watchContract(cmd *cobra.Command, a *app, contractID string) error {
	poller := contracts.NewPoller(a.contracts, a.cfg.Poll.Interval)
	updates, err := poller.Watch(cmd.Context(), contractID)
	if err != nil {
		return err
	}

	var last *model.AnalysisStatus
	for status := range updates {
		s := status
		last = &s
		fmt.Printf("Status: %s\n", status.Status)
	}

	if last == nil {
		return fmt.Errorf("could not fetch the analysis status")
	}
	switch last.Status {
	case model.StatusCompleted:
		analysis, err := a.contracts.Analysis(cmd.Context(), contractID)
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "Failed to fetch analysis"))
		}
		printAnalysis(analysis)
		return nil
	case model.StatusFailed:
		if last.ErrorMessage != "" {
			return fmt.Errorf("analysis failed: %s", last.ErrorMessage)
		}
		return fmt.Errorf("analysis failed")
	default:
		// Context cancelled mid-watch.
		return nil
	}
}

// printAnalysis renders the risk report. Missing fields render as
// "not identified" instead of breaking the output.
func printAnalysis(analysis *model.Analysis) {
	fmt.Println()
	fmt.Println("Analysis")
	fmt.Println("--------")

	if analysis.ScoreEquity != nil {
		fmt.Printf("Balance score: %d/100\n", *analysis.ScoreEquity)
	}
	if analysis.ScoreClarity != nil {
		fmt.Printf("Clarity score: %d/100\n", *analysis.ScoreClarity)
	}

	results := analysis.Results
	if results == nil {
		fmt.Println("No detailed results available.")
		return
	}

	contractType := results.ContractType
	if contractType == "" {
		contractType = "not identified"
	}
	fmt.Printf("Contract type: %s\n", contractType)

	if len(results.Parties) == 0 {
		fmt.Println("Parties: not identified")
	} else {
		fmt.Println("Parties:")
		for _, p := range results.Parties {
			fmt.Printf("  - %s (%s)\n", p.Name, p.Role)
		}
	}

	if len(results.RiskClauses) == 0 {
		fmt.Println("Risk clauses: none identified")
	} else {
		fmt.Println("Risk clauses:")
		for _, clause := range results.RiskClauses {
			fmt.Printf("  [%s] %s\n", clause.Level, clause.Clause)
			if clause.Explanation != "" {
				fmt.Printf("        %s\n", clause.Explanation)
			}
		}
	}

	if len(results.Recommendations) > 0 {
		fmt.Println("Recommendations:")
		for _, r := range results.Recommendations {
			fmt.Printf("  - %s\n", r)
		}
	}
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd, watchCmd)
}
