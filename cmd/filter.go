package cmd

import (
	"github.com/spf13/cobra"

	"github.com/segtools/gosegment/pkg/gfa"
)

var (
	filterInclude       []string
	filterIncludePrefix []string
	filterExclude       []string
	filterExcludePrefix []string
)

// addFilterFlags registers the shared segment-filter flags on a command.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&filterInclude, "include", "i", nil, "Include only these segments")
	cmd.Flags().StringSliceVarP(&filterIncludePrefix, "include-prefix", "I", nil, "Include only the segments starting with this prefix")
	cmd.Flags().StringSliceVarP(&filterExclude, "exclude", "x", nil, "Exclude these segments")
	cmd.Flags().StringSliceVarP(&filterExcludePrefix, "exclude-prefix", "X", nil, "Exclude segments starting with this prefix")
}

func filterConfig() gfa.FilterConfig {
	return gfa.FilterConfig{
		Include:       filterInclude,
		IncludePrefix: filterIncludePrefix,
		Exclude:       filterExclude,
		ExcludePrefix: filterExcludePrefix,
	}
}
