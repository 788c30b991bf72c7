package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchdsl"
	"github.com/kailas-cloud/searchdsl/query"
)

// NormalizeResult is the output of the normalize command.
type NormalizeResult struct {
	Kind  string          `json:"kind,omitempty"`
	Empty bool            `json:"empty"`
	Query json.RawMessage `json:"query"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	var request bool

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Decode a query clause and print its canonical form",
		Long: `Decode a query clause (or, with --request, a whole search request body)
from a file or stdin and print the canonical encoding. Shorthand forms are
expanded and empty clauses are dropped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if request {
				return runNormalizeRequest(cmd, rootOpts, data)
			}
			return runNormalize(cmd, rootOpts, data)
		},
	}

	cmd.Flags().BoolVar(&request, "request", false, "input is a search request body")
	return cmd
}

func runNormalize(cmd *cobra.Command, opts *RootOptions, data []byte) error {
	q, err := query.Decode(data, opts.decodeOptions()...)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid query", err)
	}
	encoded, err := json.Marshal(q)
	if err != nil {
		return WrapExitError(ExitFailure, "encode query", err)
	}

	res := NormalizeResult{Empty: q.IsEmpty(), Query: encoded}
	if !q.IsEmpty() {
		res.Kind = q.Kind().String()
	}
	return writeJSON(cmd, res, opts.Pretty)
}

func runNormalizeRequest(cmd *cobra.Command, opts *RootOptions, data []byte) error {
	req, err := searchdsl.DecodeRequest(data, opts.decodeOptions()...)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid search request", err)
	}
	return writeJSON(cmd, req, opts.Pretty)
}
