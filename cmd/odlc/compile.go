package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odl-lang/odlc/internal/compiler"
)

var maxDepth int

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Run the full pipeline and print the resulting IR as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "reject documents deeper than this (0 = unbounded)")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	c := compiler.New(compiler.Config{Logger: log, MaxDepth: maxDepth})
	out, err := c.Compile(data)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
