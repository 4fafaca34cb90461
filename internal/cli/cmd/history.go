package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/lumiere/internal/cli/model"
)

var (
	historyJSON bool
	historyMax  int
)

const defaultHistoryMax = 50

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse playback history",
	Long: `Interactive browser over what has been played. Selecting an entry
prints its URI, so it composes with a shell:

  lumiere -i "$(lumiere history)"`,
	SilenceUsage: true,
	RunE:         runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.Flags().IntVar(&historyMax, "max", defaultHistoryMax, "maximum entries to show")
}

func runHistory(_ *cobra.Command, _ []string) error {
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	if historyJSON {
		return runHistoryJSON()
	}
	return runHistoryTUI()
}

// runHistoryTUI runs the interactive history browser and prints the
// selected URI, if any.
func runHistoryTUI() error {
	store, err := app.History()
	if err != nil {
		return err
	}

	m := model.NewHistoryModel(app.Ctx(), app.Theme, store, historyMax)

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("history browser: %w", err)
	}

	if hm, ok := finalModel.(model.HistoryModel); ok {
		if uri := hm.SelectedURI(); uri != "" {
			fmt.Println(uri)
		}
	}
	return nil
}

// runHistoryJSON outputs history as JSON.
func runHistoryJSON() error {
	store, err := app.History()
	if err != nil {
		return err
	}

	m := model.NewHistoryListModel(app.Ctx(), store, historyMax)

	// Run briefly to load data
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("run model: %w", err)
	}

	listModel, ok := finalModel.(model.HistoryListModel)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}
	if listModel.Error() != nil {
		return listModel.Error()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(listModel.Entries())
}

// clearCmd clears all playback history.
var clearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Clear playback history",
	Long:         `Remove every entry from the playback history after confirmation.`,
	SilenceUsage: true,
	RunE:         runClear,
}

func init() {
	historyCmd.AddCommand(clearCmd)
}

func runClear(_ *cobra.Command, _ []string) error {
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	store, err := app.History()
	if err != nil {
		return err
	}

	m := model.NewClearModel(app.Ctx(), app.Theme, store)

	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("run model: %w", err)
	}

	cm, ok := finalModel.(model.ClearModel)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}
	if cm.Err() != nil {
		return cm.Err()
	}
	if !cm.Confirmed() {
		fmt.Println("Aborted.")
		return nil
	}

	fmt.Printf("Cleared %d entries.\n", cm.Deleted())
	return nil
}
