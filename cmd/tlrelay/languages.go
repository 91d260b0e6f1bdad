package main

import (
	"encoding/json"
	"fmt"

	"github.com/ZaguanLabs/tlrelay"
	"github.com/spf13/cobra"
)

type languageJSON struct {
	tlrelay.Language
	Direction string `json:"direction"`
	Supported bool   `json:"supported"`
}

func newLanguagesCmd(root *rootOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:     "languages",
		Aliases: []string{"list"},
		Short:   "List configured target locales",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := root.cfg.LanguageTable()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if jsonOut {
				var rows []languageJSON
				for _, l := range table.Languages() {
					rows = append(rows, languageJSON{
						Language:  l,
						Direction: l.Direction(),
						Supported: table.Supported(l.Locale),
					})
				}
				data, err := json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintf(out, "Source locale: %s\n", root.cfg.SourceLocale)
			fmt.Fprintln(out, "Target locales:")
			for _, l := range table.Languages() {
				code := l.PrimaryCode
				if code == "" {
					code = "-"
				}
				fmt.Fprintf(out, "  %-8s %-8s %-3s %s\n", l.Locale, code, l.Direction(), l.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
