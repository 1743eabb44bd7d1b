package cmd

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/NeurArk/ai-contract-guardian/upload"
)

var uploadWait bool

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a contract for analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireAuth(cmd)
		if err != nil {
			return err
		}

		controller := upload.NewController(a.client, &a.cfg.Upload)
		if err := controller.Select(args[0]); err != nil {
			return err
		}

		bar := progressbar.NewOptions(100,
			progressbar.OptionSetDescription("uploading"),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionShowCount(),
		)

		done := make(chan struct{})
		go trackProgress(controller, bar, done)

		contractID, err := controller.Start(cmd.Context())
		close(done)
		_ = bar.Finish()

		if err != nil {
			state := controller.State()
			return fmt.Errorf("%s", state.ErrorMessage)
		}

		fmt.Printf("Uploaded. Contract ID: %s\n", contractID)

		if uploadWait {
			return watchContract(cmd, a, contractID)
		}
		fmt.Printf("Track the analysis with 'guardian watch %s'.\n", contractID)
		return nil
	},
}

// trackProgress mirrors the controller's progress into the bar until
// the upload finishes.
func trackProgress(controller *upload.Controller, bar *progressbar.ProgressBar, done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = bar.Set(controller.State().Progress)
		}
	}
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadWait, "wait", true, "wait for the analysis to finish")
	rootCmd.AddCommand(uploadCmd)
}
