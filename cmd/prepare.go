package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/segtools/gosegment/pkg/prepare"
)

var (
	prepareGfa           string
	prepareGaf           string
	prepareOut           string
	prepareThreads       int
	prepareMaxDivergence float64
	prepareVariantSep    string
	prepareNoVariantSep  bool
	prepareNoEnds        bool
)

func init() {
	rootCmd.AddCommand(prepareCmd)

	prepareCmd.Flags().StringVar(&prepareGfa, "gfa", "", "GFA file describing the construct graph")
	prepareCmd.Flags().StringVarP(&prepareGaf, "gaf", "g", "stdin", "GAF file of read alignments. If none is specified, will read from stdin")
	prepareCmd.Flags().StringVarP(&prepareOut, "out", "o", "stdout", "Output CSV to write. If none is specified, will write to stdout")
	prepareCmd.Flags().IntVarP(&prepareThreads, "threads", "t", 0, "Number of threads to use (0 = all CPUs)")
	prepareCmd.Flags().Float64Var(&prepareMaxDivergence, "max-divergence", -1, "Skip reads whose alignment divergence exceeds this (negative = keep all)")
	prepareCmd.Flags().StringVar(&prepareVariantSep, "variant-sep", "=", "Separator between segment name and variant identifier")
	prepareCmd.Flags().BoolVar(&prepareNoVariantSep, "no-variant-sep", false, "Do not split variant identifiers from segment names")
	prepareCmd.Flags().BoolVar(&prepareNoEnds, "no-separate-ends", false, "Do not report the upstream/downstream sentinel segments")
	addFilterFlags(prepareCmd)

	prepareCmd.MarkFlagRequired("gfa")
}

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "segment aligned reads against the construct graph",
	Long: `segment aligned reads against the construct graph

Loads a GFA construct graph and a GAF table of read alignments, cuts every
read's cigar along its path through the graph, and writes one CSV row per
read with each segment's span, counts and sub-cigar.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := prepare.DefaultConfig()
		cfg.Filter = filterConfig()
		cfg.Threads = prepareThreads
		cfg.MaxDivergence = prepareMaxDivergence
		cfg.SeparateEnds = !prepareNoEnds
		cfg.VariantSep = prepareVariantSep
		if prepareNoVariantSep {
			cfg.VariantSep = ""
		}

		gfaFile, err := os.Open(prepareGfa)
		if err != nil {
			return err
		}
		defer gfaFile.Close()

		gafFile := os.Stdin
		if prepareGaf != "stdin" {
			gafFile, err = os.Open(prepareGaf)
			if err != nil {
				return err
			}
			defer gafFile.Close()
		}

		out := os.Stdout
		if prepareOut != "stdout" {
			out, err = os.Create(prepareOut)
			if err != nil {
				return err
			}
			defer out.Close()
		}

		return prepare.Prepare(gfaFile, gafFile, out, cfg)
	},
}
