package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/NeurArk/ai-contract-guardian/client"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download a full export of your data (JSON)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireAuth(cmd)
		if err != nil {
			return err
		}

		data, err := a.client.ExportData(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "Failed to export data"))
		}

		path := exportOutput
		if path == "" {
			path = fmt.Sprintf("guardian-export-%s.json", time.Now().Format("2006-01-02"))
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}

		fmt.Printf("Export written to %s\n", path)
		return nil
	},
}

var deleteYes bool

var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Permanently delete your account and all data",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireAuth(cmd)
		if err != nil {
			return err
		}

		if !deleteYes {
			fmt.Print("Permanently delete your account and all contracts and analyses? There is no undo. Type 'delete' to confirm: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			if strings.TrimSpace(line) != "delete" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		resp, err := a.client.DeleteAccount(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "Failed to delete account"))
		}

		// Deleting the account implies logging out: the token can never
		// resolve to a user again.
		a.session.Logout()

		fmt.Printf("Account deleted (%d contracts, %d analyses removed).\n",
			resp.DeletedContracts, resp.DeletedAnalyses)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default guardian-export-<date>.json)")
	deleteAccountCmd.Flags().BoolVar(&deleteYes, "yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(exportCmd, deleteAccountCmd)
}
