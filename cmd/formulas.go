package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var formulasFile string

var formulasCmd = &cobra.Command{
	Use:   "formulas",
	Short: "Validate and print the production formula table",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := formulasFile
		if path == "" {
			path = cfg.Formulas.Path
		}
		return printFormulas(cmd.OutOrStdout(), path)
	},
}

// printFormulas writes the validated table at path (built-in when empty)
// as YAML.
func printFormulas(w io.Writer, path string) error {
	table, err := loadFormulas(path)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(table); err != nil {
		return eris.Wrap(err, "formulas: encode")
	}
	return eris.Wrap(enc.Close(), "formulas: flush")
}

func init() {
	formulasCmd.Flags().StringVar(&formulasFile, "file", "", "formula YAML file (default from config, else built-in)")
	rootCmd.AddCommand(formulasCmd)
}
