package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/segtools/gosegment/pkg/gfa"
	"github.com/segtools/gosegment/pkg/graph"
)

var (
	graphGfa      string
	graphAssemble bool
)

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVar(&graphGfa, "gfa", "", "GFA file describing the construct graph")
	graphCmd.Flags().BoolVar(&graphAssemble, "assemble", false, "Also print the assembled forward path sequence")
	addFilterFlags(graphCmd)

	graphCmd.MarkFlagRequired("gfa")
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "inspect the construct graph",
	Long: `inspect the construct graph

Prints the forward segment set and the per-component endpoint nodes of a
(filtered) GFA construct graph.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(graphGfa)
		if err != nil {
			return err
		}
		defer f.Close()

		g, err := gfa.Read(f)
		if err != nil {
			return err
		}
		nameToSeq := g.NameMapping()

		filtered := g.Filter(filterConfig())
		dg, err := filtered.Graph()
		if err != nil {
			return err
		}
		wccs := dg.WeaklyConnectedComponents()
		forward := graph.ForwardSegments(wccs)
		ep := dg.Endpoints(wccs)

		fmt.Println("forward segments:")
		for _, n := range forward {
			fmt.Printf("\t%s\n", n)
		}
		fmt.Println("sources:")
		for _, n := range ep.Sources {
			fmt.Printf("\t%s\n", n)
		}
		fmt.Println("sinks:")
		for _, n := range ep.Sinks {
			fmt.Printf("\t%s\n", n)
		}

		if graphAssemble {
			fmt.Println("assembled forward sequence:")
			fmt.Println(gfa.AssembleSeq(nameToSeq, forward))
		}

		return nil
	},
}
