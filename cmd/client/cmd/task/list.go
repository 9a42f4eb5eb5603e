package task

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tasksync/internal/app/client"
)

var listFormat string

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список задач",
	Long:  `Просмотр всех активных задач с их статусом синхронизации.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		tasks, err := app.Tasks().ListActive(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения списка задач: %w", err)
		}

		switch listFormat {
		case "json":
			return printTasksJSON(tasks)
		default:
			return printTasksTable(tasks)
		}
	},
}

func printTasksTable(tasks []*client.Task) error {
	if len(tasks) == 0 {
		fmt.Println("Задачи не найдены")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tНАЗВАНИЕ\tВЫПОЛНЕНА\tСИНХРОНИЗАЦИЯ")

	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Title, done, syncStatusLabel(t.SyncStatus))
	}

	return w.Flush()
}

func printTasksJSON(tasks []*client.Task) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}

func syncStatusLabel(status client.SyncStatus) string {
	switch status {
	case client.SyncStatusSynced:
		return color.GreenString("synced")
	case client.SyncStatusError:
		return color.RedString("error")
	default:
		return color.YellowString("pending")
	}
}

func init() {
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "формат вывода (table, json)")
}
