// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/dotandev/xdrtrace/internal/analyzer"
	"github.com/dotandev/xdrtrace/internal/ledgerstate"
	"github.com/dotandev/xdrtrace/internal/scval"
	"github.com/dotandev/xdrtrace/internal/trace"
)

const (
	maxArgWidth    = 50
	maxResultWidth = 90
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	callColor   = color.New(color.FgGreen)
	returnColor = color.New(color.FgBlue)
	eventColor  = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
)

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func shortID(s string) string {
	if len(s) > 16 {
		return s[:12] + "..."
	}
	return s
}

func renderReport(w io.Writer, rep *analyzer.Report) {
	headerColor.Fprintf(w, "Transaction %s\n", rep.Hash)
	if rep.Status != "" || rep.Ledger != 0 {
		fmt.Fprintf(w, "  status=%s ledger=%d\n", rep.Status, rep.Ledger)
	}
	if rep.Err != nil {
		errorColor.Fprintf(w, "  result meta: %v\n", rep.Err)
	}
	fmt.Fprintln(w)

	renderState(w, "Pre-state", rep.PreState)
	renderState(w, "Post-state", rep.PostState)
	renderTrace(w, rep.Trace)
}

func renderState(w io.Writer, title string, changes []ledgerstate.Change) {
	headerColor.Fprintf(w, "%s (%d entries)\n", title, len(changes))
	for _, c := range changes {
		if c.Err != nil {
			errorColor.Fprintf(w, "  [%s] %v\n", c.Kind, c.Err)
			continue
		}
		fmt.Fprintf(w, "  %s [%s] %s\n", shortID(c.Contract.String()), ledgerstate.KeyName(c.Key), dimColor.Sprint(c.Kind))
		if m, ok := c.Value.(scval.Map); ok {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "    %s: %s\n", k, truncate(m[k].String(), maxResultWidth))
			}
			continue
		}
		fmt.Fprintf(w, "    %s\n", truncate(c.Value.String(), maxResultWidth))
	}
	fmt.Fprintln(w)
}

func renderTrace(w io.Writer, records []trace.Record) {
	headerColor.Fprintf(w, "Call trace (%d records)\n", len(records))
	for _, r := range records {
		indent := strings.Repeat("  ", r.Depth)
		switch r.Kind {
		case trace.Call:
			callColor.Fprintf(w, "  %s-> %s::%s(%s)\n", indent, shortID(r.Contract.String()), r.Function, formatArgs(r.Data))
		case trace.Return:
			line := fmt.Sprintf("  %s<- %s", indent, r.Function)
			if _, void := r.Data.(scval.Void); r.Data != nil && !void {
				line += " => " + truncate(r.Data.String(), maxResultWidth)
			}
			returnColor.Fprintln(w, line)
		case trace.Event:
			eventColor.Fprintf(w, "  %s   ** [%s] = %s\n", indent, joinTopics(r.Topics, 3), dataText(r.Data))
		case trace.Diagnostic:
			dimColor.Fprintf(w, "  %s   [diag] [%s] = %s\n", indent, joinTopics(r.Topics, len(r.Topics)), dataText(r.Data))
		case trace.Malformed:
			errorColor.Fprintf(w, "  %s   !! %v\n", indent, r.Err)
			continue
		}
		if r.Err != nil {
			errorColor.Fprintf(w, "  %s   !! %v\n", indent, r.Err)
		}
	}
	fmt.Fprintln(w)
}

func formatArgs(v scval.Value) string {
	switch t := v.(type) {
	case nil, scval.Void:
		return ""
	case scval.Vec:
		parts := make([]string, len(t))
		for i, a := range t {
			parts[i] = truncate(a.String(), maxArgWidth)
		}
		return strings.Join(parts, ", ")
	}
	return truncate(v.String(), 80)
}

func dataText(v scval.Value) string {
	if v == nil {
		return "?"
	}
	return v.String()
}

func joinTopics(topics []scval.Value, n int) string {
	if n > len(topics) {
		n = len(topics)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = topics[i].String()
	}
	return strings.Join(parts, ", ")
}
