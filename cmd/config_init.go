package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml with the default settings",
	RunE: func(*cobra.Command, []string) error {
		if err := config.WriteDefault("config.yaml"); err != nil {
			return err
		}
		fmt.Println("Wrote config.yaml.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
