package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"msgvis/config"
)

func newCheckCmd(logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "load and resolve an env file, reporting every offending key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString(envFileFlag)
			dump, _ := cmd.Flags().GetBool(printFlag)

			s, err := config.LoadFile(path)
			if err != nil {
				for _, e := range flatten(err) {
					logger.Error("invalid configuration", zap.String("env_file", path), zap.Error(e))
				}
				return fmt.Errorf("%s: configuration invalid", path)
			}

			logger.Info("configuration ok",
				zap.String("env_file", path),
				zap.String("settings_module", s.SettingsModule),
				zap.String("addr", s.Addr()),
				zap.String("database", s.Database.String()),
				zap.String("cache", s.CacheBackend()),
				zap.String("deploy_host", s.DeployHost.OrElse("")),
				zap.String("deploy_virtualenv", s.DeployVirtualenv.OrElse("")),
			)
			if !dump {
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s.Redact())
		},
	}
	cmd.Flags().StringP(envFileFlag, "e", ".env", "resolved env file to check")
	cmd.Flags().Bool(printFlag, false, "print the resolved settings as JSON, secrets masked")
	return cmd
}

// flatten unwraps joined errors so each offending key is reported on its own.
func flatten(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}
