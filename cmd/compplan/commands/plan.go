package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/compplan/internal/app"
	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the bundler plan once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := planOptions(cmd)
			if err != nil {
				return err
			}
			return c.app.Plan(cmd.Context(), opts)
		},
	}
	addPlanFlags(cmd)
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Compute the plan and recompute it whenever components change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := planOptions(cmd)
			if err != nil {
				return err
			}
			return c.app.Watch(cmd.Context(), opts)
		},
	}
	addPlanFlags(cmd)
	return cmd
}

func addPlanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "Path to compplan.yaml (default: searched upwards from the working directory)")
	cmd.Flags().StringArrayP("env", "e", nil, "Environment entry handed to the override, as key=value (repeatable)")
	cmd.Flags().BoolP("verbose", "v", false, "Report resolved directories, cache groups and phase timings")
	cmd.Flags().StringP("out", "o", "", "Write the plan to this file instead of the configured destination")
}

func planOptions(cmd *cobra.Command) (app.PlanOptions, error) {
	configPath, _ := cmd.Flags().GetString("config")
	pairs, _ := cmd.Flags().GetStringArray("env")
	verbose, _ := cmd.Flags().GetBool("verbose")
	out, _ := cmd.Flags().GetString("out")

	env, err := parseEnv(pairs)
	if err != nil {
		return app.PlanOptions{}, err
	}

	return app.PlanOptions{
		ConfigPath: configPath,
		Env:        env,
		Verbose:    verbose,
		OutFile:    out,
		Out:        cmd.OutOrStdout(),
	}, nil
}

// parseEnv turns key=value pairs into a map. Later pairs win.
func parseEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidEnvEntry, pair), "value", pair)
		}
		env[key] = value
	}
	return env, nil
}
