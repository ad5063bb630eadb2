package main

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"msgvis/config"
	"msgvis/render"
)

func newRenderCmd(logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "substitute {{ NAME }} placeholders in an env template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tmplPath, _ := cmd.Flags().GetString(templateFlag)
			valuesPath, _ := cmd.Flags().GetString(valuesFlag)
			fromEnv, _ := cmd.Flags().GetBool(fromEnvFlag)
			outPath, _ := cmd.Flags().GetString(outFlag)

			values, err := readValues(valuesPath, fromEnv, os.Environ())
			if err != nil {
				return err
			}

			tmpl, err := os.Open(tmplPath)
			if err != nil {
				return fmt.Errorf("open template: %w", err)
			}
			defer tmpl.Close()

			var out bytes.Buffer
			if err := render.Render(tmpl, values, &out); err != nil {
				return err
			}
			// The rendered file must load; catch template typos here rather
			// than at server start.
			if _, err := config.Parse(bytes.NewReader(out.Bytes()), tmplPath); err != nil {
				return fmt.Errorf("rendered file is not loadable: %w", err)
			}

			if outPath == "" || outPath == "-" {
				_, err = io.Copy(cmd.OutOrStdout(), &out)
				return err
			}
			if err := os.WriteFile(outPath, out.Bytes(), 0o600); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			logger.Info("rendered env file", zap.String("template", tmplPath), zap.String("out", outPath))
			return nil
		},
	}
	cmd.Flags().StringP(templateFlag, "t", "env.template", "template containing {{ NAME }} placeholders")
	cmd.Flags().StringP(valuesFlag, "v", "", "dotenv file with placeholder values (quoting allowed)")
	cmd.Flags().Bool(fromEnvFlag, false, "also take placeholder values from the process environment")
	cmd.Flags().StringP(outFlag, "o", "-", "where to write the resolved env file, - for stdout")
	return cmd
}

// readValues merges the values file with the process environment. Values
// file entries win.
func readValues(path string, fromEnv bool, environ []string) (map[string]string, error) {
	values := map[string]string{}
	if fromEnv {
		maps.Copy(values, config.FromEnviron(environ).Map())
	}
	if path != "" {
		fileValues, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read values %s: %w", path, err)
		}
		maps.Copy(values, fileValues)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no placeholder values: pass --%s or --%s", valuesFlag, fromEnvFlag)
	}
	return values, nil
}
