package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/egor/vicai/config"
	"github.com/egor/vicai/service"
)

var checkCmd = &cobra.Command{
	Use:   "check <text>",
	Short: "Show the safety verdict and intent for a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		keywords, err := config.LoadKeywords(cfg.KeywordsFile)
		if err != nil {
			return err
		}

		gw := service.New(service.Options{Keywords: keywords})
		v, a := gw.Inspect(strings.Join(args, " "))

		out := map[string]any{
			"allowed": v.Allowed,
			"reason":  v.Reason,
			"intent":  a.Label,
			"clean":   a.Clean,
		}
		if !v.Allowed {
			out["matched"] = v.Matched
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}
