package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"basicrv/mmio"
	"basicrv/sim/trace"
)

var (
	traceOpts = struct {
		op    string
		reg   string
		run   string
		limit int
	}{}

	traceCmd = &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded peripheral register traces",
	}

	traceViewCmd = &cobra.Command{
		Use:   "view <file>",
		Short: "Print trace events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return viewTrace(cmd.OutOrStdout(), args[0])
		},
	}

	traceStatsCmd = &cobra.Command{
		Use:   "stats <file>",
		Short: "Count accesses per register",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return traceStats(cmd.OutOrStdout(), args[0])
		},
	}
)

func init() {
	for _, c := range []*cobra.Command{traceViewCmd, traceStatsCmd} {
		f := c.Flags()
		f.StringVar(&traceOpts.op, "op", "", "only read or write events")
		f.StringVar(&traceOpts.reg, "reg", "", "only events for this register")
		f.StringVar(&traceOpts.run, "run", "", "only events from this run ID")
	}
	traceViewCmd.Flags().IntVar(&traceOpts.limit, "limit", 0, "stop after this many events (0 = all)")
	traceCmd.AddCommand(traceViewCmd, traceStatsCmd)
	rootCmd.AddCommand(traceCmd)
}

func traceFilter() (trace.Filter, error) {
	f := trace.Filter{RunID: traceOpts.run}
	if traceOpts.op != "" {
		op, err := trace.ParseOp(traceOpts.op)
		if err != nil {
			return f, err
		}
		f.Op = &op
	}
	if traceOpts.reg != "" {
		off, err := mmio.ParseOffset(traceOpts.reg)
		if err != nil {
			return f, err
		}
		f.Offset = &off
	}
	return f, nil
}

func viewTrace(w io.Writer, path string) error {
	filter, err := traceFilter()
	if err != nil {
		return err
	}
	r, err := trace.Open(path, filter)
	if err != nil {
		return err
	}
	defer r.Close()

	for n := 0; traceOpts.limit == 0 || n < traceOpts.limit; n++ {
		e, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w, e)
	}
	return nil
}

type statKey struct {
	op  trace.Op
	off mmio.Offset
}

func traceStats(w io.Writer, path string) error {
	filter, err := traceFilter()
	if err != nil {
		return err
	}
	r, err := trace.Open(path, filter)
	if err != nil {
		return err
	}
	defer r.Close()

	counts := map[statKey]int{}
	runs := map[string]bool{}
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		counts[statKey{e.Op, e.Offset}]++
		runs[e.RunID] = true
	}

	keys := make([]statKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].off != keys[j].off {
			return keys[i].off < keys[j].off
		}
		return keys[i].op < keys[j].op
	})

	fmt.Fprintf(w, "runs: %d\n", len(runs))
	for _, k := range keys {
		fmt.Fprintf(w, "%-10s %-5s %d\n", k.off, k.op, counts[k])
	}
	return nil
}
