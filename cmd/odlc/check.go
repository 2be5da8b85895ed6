package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odl-lang/odlc/internal/parser"
	"github.com/odl-lang/odlc/internal/surface"
	"github.com/odl-lang/odlc/internal/syntax"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Run Parse and Syntax only, without expanding or resolving the document",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	raw, err := surface.LoadYAML(data)
	if err != nil {
		return err
	}
	n, err := parser.Normalize(raw)
	if err != nil {
		return err
	}
	if err := syntax.Validate(n); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}
