package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
	"github.com/shnkreddy98/airfold-backend/internal/remote"
)

func newFeaturesCmd(client func() *remote.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Inspect a project's feature history",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <project-id>",
		Short: "List a project's features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := client().ListFeatures(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("no features")
				return nil
			}
			for _, f := range items {
				fmt.Printf("%s\t%-10s\t%s\t%s\n", f.ID, f.Status, f.BranchName, f.Title)
			}
			return nil
		},
	})

	return cmd
}

// newSubmitCmd runs one execute round-trip against the remote service,
// bypassing the API server. The prompt comes from --prompt or stdin.
func newSubmitCmd(client func() *remote.Client) *cobra.Command {
	var projectName, owner, title, prompt string
	var first bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a feature prompt for execution",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read prompt: %w", err)
				}
				prompt = strings.TrimSpace(string(data))
			}
			if prompt == "" {
				return fmt.Errorf("prompt is required (flag or stdin)")
			}

			now := time.Now()
			project := domain.Project{Name: projectName, Owner: owner}
			branch := domain.BranchName(projectName, title, first, now)

			req := remote.ExecuteRequest{
				URL:         project.RemoteURL(),
				ProjectName: projectName,
				BranchName:  branch,
				DirPath:     "tmp",
				Prompt:      prompt,
				First:       first,
			}

			fmt.Printf("executing on branch %s (this can take several minutes)\n", branch)
			resp, err := client().Execute(cmd.Context(), req)
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("execution failed: %s", resp.Message)
			}
			fmt.Printf("done: %s\n", resp.Message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "project name")
	cmd.Flags().StringVarP(&owner, "owner", "u", "", "project owner")
	cmd.Flags().StringVarP(&title, "title", "t", "", "feature title")
	cmd.Flags().StringVar(&prompt, "prompt", "", "feature prompt (stdin when omitted)")
	cmd.Flags().BoolVar(&first, "first", false, "treat this as the project's first feature")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("owner")
	cmd.MarkFlagRequired("title")
	return cmd
}
