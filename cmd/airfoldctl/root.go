package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shnkreddy98/airfold-backend/internal/remote"
)

func newRootCmd() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:           "airfoldctl",
		Short:         "Poke the remote app store and execution service directly",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPIURL(), "base URL of the remote API")

	client := func() *remote.Client { return remote.NewClient(apiURL) }

	cmd.AddCommand(newProjectsCmd(client))
	cmd.AddCommand(newFeaturesCmd(client))
	cmd.AddCommand(newSubmitCmd(client))

	return cmd
}

func defaultAPIURL() string {
	if v := os.Getenv("REMOTE_API_URL"); v != "" {
		return v
	}
	return "http://localhost:8000/api"
}
