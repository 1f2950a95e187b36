package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/brogergvhs/webtoond/internal/config"
)

var forceReset bool

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the active config to default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		label, err := config.CurrentLabel()
		if err != nil {
			return err
		}
		activePath, err := config.ActiveConfigPath()
		if err != nil {
			return err
		}

		if !forceReset {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Overwrite %q with defaults", label),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Println("Aborted.")
				return nil
			}
		}

		cfg := config.DefaultConfig()
		if err := config.SaveYAML(cfg, activePath); err != nil {
			return err
		}

		fmt.Printf("Reset %q (%s):\n", label, activePath)
		cfg.Print()
		return nil
	},
}

func init() {
	configResetCmd.Flags().BoolVarP(&forceReset, "force", "f", false, "reset without asking")
	configCmd.AddCommand(configResetCmd)
}
