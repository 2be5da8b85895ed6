// Command odlc compiles Organizational Definition Language documents.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	log     = logrus.New()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "odlc",
		Short: "Compile Organizational Definition Language documents into their typed IR",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			} else {
				log.SetLevel(logrus.WarnLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each pipeline stage as it runs")
	root.AddCommand(newCompileCmd(), newCheckCmd())
	return root
}
