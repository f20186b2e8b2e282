package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "engine",
	Short:        "Language exercise grading engine",
	SilenceUsage: true,
}
