package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/services"
)

func cleaningCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleaning",
		Short: "Inspect cleaning tasks and staff",
	}
	cmd.AddCommand(cleaningTasksCmd(), cleaningStaffCmd())
	return cmd
}

func withCleaning(ctx context.Context, fn func(context.Context, *services.CleaningService) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg, false)
	if err != nil {
		return err
	}
	defer closeDB(db)
	return fn(ctx, services.NewCleaningService(db, nil, nil))
}

func cleaningTasksCmd() *cobra.Command {
	var f services.TaskFilter
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List cleaning tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCleaning(cmd.Context(), func(ctx context.Context, svc *services.CleaningService) error {
				tasks, err := svc.ListTasks(ctx, f)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Room", "Assigned To", "Type", "Priority", "Status", "Assigned", "Completed"})
				for _, t := range tasks {
					completed := ""
					if t.CompletedDate != nil {
						completed = t.CompletedDate.Format("2006-01-02 15:04")
					}
					tw.AppendRow(table.Row{
						t.ID, t.RoomNumber, t.AssignedTo, t.CleaningType, t.Priority, t.Status,
						t.AssignedDate.Format("2006-01-02 15:04"), completed,
					})
				}
				tw.AppendFooter(table.Row{"", "", "", "", "", "Total", len(tasks)})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "status filter")
	cmd.Flags().StringVar(&f.Priority, "priority", "", "priority filter")
	cmd.Flags().StringVar(&f.AssignedTo, "assigned-to", "", "assignee filter")
	cmd.Flags().UintVar(&f.RoomID, "room-id", 0, "room filter")
	return cmd
}

func cleaningStaffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "staff",
		Short: "List cleaning staff with their workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCleaning(cmd.Context(), func(ctx context.Context, svc *services.CleaningService) error {
				staff, err := svc.ListStaff(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(staff)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Status", "Load", "Shift", "Specialization"})
				for _, s := range staff {
					tw.AppendRow(table.Row{
						s.ID, s.Name, s.Status, fmt.Sprintf("%d/%d", s.CurrentTasks, s.MaxTasks), s.Shift,
						specializationLabel(s.Specialization),
					})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func specializationLabel(spec models.Specialization) string {
	parts := make([]string, 0, len(spec))
	for _, t := range spec {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}

func init() {
	rootCmd.AddCommand(cleaningCmd())
}
