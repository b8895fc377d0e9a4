package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// ValidOutputs defines the allowed --output values.
var ValidOutputs = []string{"naemon", "oneline", "value", "json", "yaml", "none"}

// ValidWrites defines the allowed --write values.
var ValidWrites = []string{"overwrite", "backup", "transaction"}

// ValidMetadata defines the allowed --metadata values.
var ValidMetadata = []string{"file", "filter", "total", "none"}

// Options holds every flag of the brine command.
type Options struct {
	Verbose  bool
	Encoding string

	Filters       []string
	FilterFiles   []string
	Hosts         []string
	Services      []string
	Commands      []string
	Contacts      []string
	Hostgroups    []string
	Servicegroups []string

	Updates            []string
	Delete             bool
	Write              string
	NoTransactionCheck bool
	Commit             bool

	Counts   []string
	Output   string
	Selects  []string
	Metadata []string
	Limit    int
}

// NewRootCommand creates the brine command.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "brine [flags] [config-file...]",
		Short: "The salty command line interface to your monitoring configuration",
		Long: `Query and update object definitions embedded in monitoring
configuration files.

Filters and updates are written in a small sandboxed expression language
with all object directives available as variables. Any filter expression
that evaluates to a truthy value includes the object definition in the
result. Update expressions may additionally use the = operator to set a
directive, and += / -= to add or remove members of comma-separated
collection values such as "contacts" or "hostgroups". Assigning None or
the empty string removes the directive entirely.

A directory argument expands to the *.cfg files directly inside it. With
no config files, object definitions are read from stdin (query only).`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidOutputs, opts.Output) {
				return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, ValidOutputs)
			}
			if !slices.Contains(ValidWrites, opts.Write) {
				return fmt.Errorf("invalid write strategy %q: must be one of %v", opts.Write, ValidWrites)
			}
			for _, m := range opts.Metadata {
				if !slices.Contains(ValidMetadata, m) {
					return fmt.Errorf("invalid metadata %q: must be one of %v", m, ValidMetadata)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "utf-8", "encoding used in the configuration files")

	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil,
		"include object definitions matching the given expression (repeatable; filters expand the match set)")
	cmd.Flags().StringArrayVar(&opts.FilterFiles, "filter-file", nil,
		"read filter expressions from the given file, one per line")
	cmd.Flags().StringArrayVar(&opts.Hosts, "host", nil,
		"filter hosts on their host_name")
	cmd.Flags().StringArrayVarP(&opts.Services, "service", "s", nil,
		"filter services on their host_name and service_description, separated by semicolon")
	cmd.Flags().StringArrayVar(&opts.Commands, "command", nil,
		"filter commands on their command_name")
	cmd.Flags().StringArrayVar(&opts.Contacts, "contact", nil,
		"filter contacts on their contact_name")
	cmd.Flags().StringArrayVar(&opts.Hostgroups, "hostgroup", nil,
		"filter hostgroups on their hostgroup_name")
	cmd.Flags().StringArrayVar(&opts.Servicegroups, "servicegroup", nil,
		"filter servicegroups on their servicegroup_name")

	cmd.Flags().StringArrayVarP(&opts.Updates, "update", "u", nil,
		"update matching object definitions with the given expression")
	cmd.Flags().BoolVarP(&opts.Delete, "delete", "d", false,
		"delete matching object definitions")
	cmd.Flags().StringVarP(&opts.Write, "write", "w", "transaction",
		"how updated files are written (overwrite|backup|transaction)")
	cmd.Flags().BoolVar(&opts.NoTransactionCheck, "no-transaction-check", false,
		"skip the modification-time check between original and transaction files")
	cmd.Flags().BoolVar(&opts.Commit, "commit", false,
		"replace the original file(s) with their transaction file(s), if any; no other operations are made")

	cmd.Flags().StringArrayVarP(&opts.Counts, "count", "c", nil,
		"count object definitions per distinct value of the given directive; only the counts are printed")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "naemon",
		"how matching object definitions are printed (naemon|oneline|value|json|yaml|none)")
	cmd.Flags().StringArrayVar(&opts.Selects, "select", nil,
		"print only matching object directives")
	cmd.Flags().StringArrayVarP(&opts.Metadata, "metadata", "m", []string{"file", "total"},
		"meta data printed around matches (file|filter|total|none)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0,
		"stop after this many matching object definitions")

	return cmd
}
