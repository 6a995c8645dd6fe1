// Command morphctl is a CLI front end for the morphology engine,
// wiring pkg/morphology/config, pkg/morphology/kernel/parse,
// pkg/morphology/method and pkg/vision/pixelview together the way
// pockettts-tools' root command wires its own config and subcommands:
// a persistent --config/--option flag set loaded once in
// PersistentPreRunE, subcommands that only read the already-loaded
// value.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/itohio/morphology/pkg/logger"
	"github.com/itohio/morphology/pkg/morphology/config"
)

var (
	optionFlags []string
	configPath  string
	activeCfg   config.Options
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "morphctl",
		Short: "Apply mathematical-morphology methods to an image",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			artifact, err := loadArtifact(configPath, optionFlags)
			if err != nil {
				return err
			}
			loaded, err := config.Decode(artifact)
			if err != nil {
				return err
			}
			activeCfg = loaded
			if activeCfg.Verbose {
				logger.Log.Debug().Msg("morphctl: config loaded")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringArrayVarP(&optionFlags, "option", "o", nil,
		`engine option, "key=value" (repeatable); e.g. -o convolve:scale=1.5 -o verbose=true`)
	cmd.PersistentFlags().StringVar(&configPath, "config", "",
		"YAML file of engine options, overridden by -o flags")
	cmd.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ToLower(name))
	})

	cmd.AddCommand(newApplyCmd())
	cmd.AddCommand(newShowKernelCmd())

	return cmd
}

// loadArtifact assembles the engine's option artifact map: the optional
// YAML config file first, then repeated "key=value" -o flags on top.
func loadArtifact(path string, flags []string) (map[string]string, error) {
	out := make(map[string]string, len(flags))
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("morphctl: config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("morphctl: config %s: %w", path, err)
		}
	}
	for _, f := range flags {
		key, val, ok := splitOption(f)
		if !ok {
			return nil, fmt.Errorf("morphctl: malformed -o %q, want key=value", f)
		}
		out[key] = val
	}
	return out, nil
}

func splitOption(f string) (key, val string, ok bool) {
	for i := 0; i < len(f); i++ {
		if f[i] == '=' {
			return f[:i], f[i+1:], true
		}
	}
	return "", "", false
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
