package commands

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"senate-lobbyist-source/internal/source"
)

var errCheckFailed = errors.New("connection check failed")

type connectionStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Checks that the configured API key can reach the API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		src, err := source.New(&cfg.Source)
		if err != nil {
			return err
		}

		status := connectionStatus{Status: "SUCCEEDED"}
		ok, checkErr := src.CheckConnection(cmd.Context())
		if !ok {
			status = connectionStatus{Status: "FAILED", Message: checkErr.Error()}
		}
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(status); err != nil {
			return err
		}
		if !ok {
			return errCheckFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
