package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	templateFlag = "template"
	valuesFlag   = "values"
	fromEnvFlag  = "from-env"
	outFlag      = "out"
	envFileFlag  = "env-file"
	printFlag    = "print"
)

func newRootCmd(logger *zap.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "envtool",
		Short:        "envtool renders and checks msgvis deployment environment files",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newRenderCmd(logger), newCheckCmd(logger))
	return rootCmd
}
