package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
	"github.com/shnkreddy98/airfold-backend/internal/remote"
)

func newProjectsCmd(client func() *remote.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects on the remote store",
	}
	cmd.AddCommand(newProjectsListCmd(client))
	cmd.AddCommand(newProjectsCreateCmd(client))
	cmd.AddCommand(newProjectsDeleteCmd(client))
	return cmd
}

func newProjectsListCmd(client func() *remote.Client) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an owner's projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := client().ListProjects(cmd.Context(), owner)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("no projects")
				return nil
			}
			for _, p := range items {
				fmt.Printf("%s\t%s\t%s\n", p.ID, p.Name, p.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "project owner")
	cmd.MarkFlagRequired("owner")
	return cmd
}

func newProjectsCreateCmd(client func() *remote.Client) *cobra.Command {
	var owner, name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			project := domain.Project{
				ID:        uuid.NewString(),
				Name:      name,
				Owner:     owner,
				CreatedAt: time.Now().UTC(),
			}
			created, err := client().CreateProject(cmd.Context(), owner, project)
			if err != nil {
				return err
			}
			if created != nil {
				project = *created
			}
			fmt.Printf("created %s (%s)\n", project.Name, project.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "project owner")
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.MarkFlagRequired("owner")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectsDeleteCmd(client func() *remote.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}
