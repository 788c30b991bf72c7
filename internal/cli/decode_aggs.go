package cli

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchdsl/aggregation"
	"github.com/kailas-cloud/searchdsl/decode"
)

// DecodeAggsResult is the output of the decode-aggs command.
type DecodeAggsResult struct {
	Aggregations aggregation.Aggregations `json:"aggregations"`
	Errors       map[string]string        `json:"errors,omitempty"`
}

// NewDecodeAggsCommand creates the decode-aggs command.
func NewDecodeAggsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		partial  bool
		response bool
		summary  bool
	)

	cmd := &cobra.Command{
		Use:   "decode-aggs [file]",
		Short: "Decode aggregation results into typed buckets",
		Long: `Decode the aggregations object of a search response from a file or stdin
and print it re-encoded from the typed model. With --response the input is a
whole search response. With --partial, aggregations that fail are reported
and the rest are still printed; the command then exits with status 1.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if response {
				if data, err = aggregationsOf(data); err != nil {
					return err
				}
			}
			return runDecodeAggs(cmd, rootOpts, data, partial, summary)
		},
	}

	cmd.Flags().BoolVar(&partial, "partial", false, "keep aggregations that decode when a sibling fails")
	cmd.Flags().BoolVar(&response, "response", false, "input is a whole search response")
	cmd.Flags().BoolVar(&summary, "summary", false, "print one line per bucket instead of JSON")
	return cmd
}

func runDecodeAggs(cmd *cobra.Command, opts *RootOptions, data []byte, partial, summary bool) error {
	var res DecodeAggsResult
	if partial {
		aggs, errs, err := aggregation.DecodeEach(data, opts.decodeOptions()...)
		if err != nil {
			return WrapExitError(ExitFailure, "invalid aggregations", err)
		}
		res.Aggregations = aggs
		for name, aerr := range errs {
			if res.Errors == nil {
				res.Errors = make(map[string]string, len(errs))
			}
			res.Errors[name] = aerr.Error()
		}
	} else {
		aggs, err := aggregation.Decode(data, opts.decodeOptions()...)
		if err != nil {
			return WrapExitError(ExitFailure, "invalid aggregations", err)
		}
		res.Aggregations = aggs
	}

	if summary {
		writeSummary(cmd, res.Aggregations, "")
	} else if err := writeJSON(cmd, res, opts.Pretty); err != nil {
		return err
	}

	if len(res.Errors) > 0 {
		names := make([]string, 0, len(res.Errors))
		for name := range res.Errors {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "aggregation %q: %s\n", name, res.Errors[name])
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d aggregation(s) failed to decode", len(res.Errors)))
	}
	return nil
}

// writeSummary prints the tree one bucket per line, indented by depth.
func writeSummary(cmd *cobra.Command, aggs aggregation.Aggregations, indent string) {
	out := cmd.OutOrStdout()
	for name, r := range aggs.All() {
		switch {
		case r.Buckets != nil:
			_, _ = fmt.Fprintf(out, "%s%s (%d buckets)\n", indent, name, len(r.Buckets))
			for _, b := range r.Buckets {
				if n, ok := b.Count(); ok {
					_, _ = fmt.Fprintf(out, "%s  %s [%s] %d\n", indent, b.Label(), b.Kind(), n)
				} else {
					_, _ = fmt.Fprintf(out, "%s  %s [%s]\n", indent, b.Label(), b.Kind())
				}
				writeSummary(cmd, b.SubAggregations(), indent+"    ")
			}
		case r.Value != nil:
			_, _ = fmt.Fprintf(out, "%s%s = %g\n", indent, name, *r.Value)
		case r.DocCount != nil:
			_, _ = fmt.Fprintf(out, "%s%s %d\n", indent, name, *r.DocCount)
			writeSummary(cmd, r.Aggregations, indent+"  ")
		default:
			_, _ = fmt.Fprintf(out, "%s%s\n", indent, name)
		}
	}
}

// aggregationsOf extracts the aggregations member of a search response.
func aggregationsOf(data []byte) ([]byte, error) {
	members, err := decode.Members(data)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "invalid search response", err)
	}
	for _, m := range members {
		if m.Key == "aggregations" {
			return m.Value, nil
		}
	}
	return json.RawMessage(`{}`), nil
}
