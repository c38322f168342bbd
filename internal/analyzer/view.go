// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package analyzer

import (
	"github.com/dotandev/xdrtrace/internal/ledgerstate"
	"github.com/dotandev/xdrtrace/internal/scval"
	"github.com/dotandev/xdrtrace/internal/trace"
)

// ReportView is the JSON form of a Report.
type ReportView struct {
	Hash      string       `json:"hash"`
	Status    string       `json:"status,omitempty"`
	Ledger    uint32       `json:"ledger,omitempty"`
	PreState  []ChangeView `json:"pre_state"`
	PostState []ChangeView `json:"post_state"`
	Trace     []RecordView `json:"trace"`
	Error     string       `json:"error,omitempty"`
}

type ChangeView struct {
	Contract           string `json:"contract,omitempty"`
	KeyName            string `json:"key_name,omitempty"`
	Key                any    `json:"key"`
	Value              any    `json:"value"`
	Kind               string `json:"kind"`
	Durability         string `json:"durability,omitempty"`
	LastModifiedLedger uint32 `json:"last_modified_ledger,omitempty"`
	Error              string `json:"error,omitempty"`
}

type RecordView struct {
	Kind      string `json:"kind"`
	Depth     int    `json:"depth"`
	Contract  any    `json:"contract,omitempty"`
	Function  string `json:"function,omitempty"`
	Topics    []any  `json:"topics,omitempty"`
	Data      any    `json:"data,omitempty"`
	EmittedBy string `json:"emitted_by,omitempty"`
	Error     string `json:"error,omitempty"`
}

// View converts the report for JSON output.
func (r *Report) View() ReportView {
	v := ReportView{
		Hash:      r.Hash,
		Status:    r.Status,
		Ledger:    r.Ledger,
		PreState:  ChangeViews(r.PreState),
		PostState: ChangeViews(r.PostState),
		Trace:     make([]RecordView, 0, len(r.Trace)),
	}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	for _, rec := range r.Trace {
		v.Trace = append(v.Trace, RecordViewOf(rec))
	}
	return v
}

// ChangeViews converts extracted state entries for JSON output.
func ChangeViews(changes []ledgerstate.Change) []ChangeView {
	out := make([]ChangeView, 0, len(changes))
	for _, c := range changes {
		cv := ChangeView{
			Kind:               c.Kind.String(),
			Durability:         c.Durability,
			LastModifiedLedger: c.LastModifiedLedger,
			Key:                scval.Native(c.Key),
			Value:              scval.Native(c.Value),
			KeyName:            ledgerstate.KeyName(c.Key),
		}
		if c.Err != nil {
			cv.Error = c.Err.Error()
		} else {
			cv.Contract = c.Contract.String()
		}
		out = append(out, cv)
	}
	return out
}

// RecordViewOf converts one trace record for JSON output.
func RecordViewOf(rec trace.Record) RecordView {
	rv := RecordView{
		Kind:     rec.Kind.String(),
		Depth:    rec.Depth,
		Function: rec.Function,
	}
	if rec.Contract != nil {
		rv.Contract = scval.Native(rec.Contract)
	}
	if rec.Data != nil {
		rv.Data = scval.Native(rec.Data)
	}
	for _, t := range rec.Topics {
		rv.Topics = append(rv.Topics, scval.Native(t))
	}
	if rec.EmittedBy != nil {
		rv.EmittedBy = rec.EmittedBy.String()
	}
	if rec.Err != nil {
		rv.Error = rec.Err.Error()
	}
	return rv
}
