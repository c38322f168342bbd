// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package trace rebuilds a nested call trace from the flat list of diagnostic
// events Soroban emits for a transaction.
package trace

import (
	"fmt"

	"github.com/stellar/go/xdr"

	"github.com/dotandev/xdrtrace/internal/scval"
)

const (
	topicCall    = "fn_call"
	topicReturn  = "fn_return"
	topicMetrics = "core_metrics"
)

// Kind is the type of a trace Record.
type Kind uint8

const (
	Call Kind = iota
	Return
	Event
	Diagnostic
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Call:
		return "call"
	case Return:
		return "return"
	case Event:
		return "event"
	case Diagnostic:
		return "diagnostic"
	case Malformed:
		return "malformed"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Record is one entry of a reconstructed trace.
//
// Call sets Contract, Function and Data (the arguments). Return sets Function
// and Data (the result). Event and Diagnostic set Topics and Data. Malformed
// sets Err and means the topics could not be decoded. Any other kind with Err
// set had an undecodable payload: Data is nil but the depth is still tracked.
type Record struct {
	Kind     Kind
	Depth    int
	Contract scval.Value
	Function string
	Topics   []scval.Value
	Data     scval.Value

	// EmittedBy is the contract that emitted the event, when the event says.
	EmittedBy        *scval.Address
	InSuccessfulCall bool

	Err error
}

// ReconstructXDR parses each base64 DiagnosticEvent and reconstructs the
// trace. Records that fail to parse become Malformed entries in place.
func ReconstructXDR(events []string) []Record {
	r := newReconstructor(len(events))
	for i, b64 := range events {
		var ev xdr.DiagnosticEvent
		if err := xdr.SafeUnmarshalBase64(b64, &ev); err != nil {
			r.malformed(fmt.Errorf("event %d: %w: %v", i, scval.ErrMalformedBinary, err))
			continue
		}
		r.add(i, ev)
	}
	return r.records
}

// Reconstruct walks events in order and returns the depth-annotated trace.
// The input order is preserved; each call is independent of any other.
func Reconstruct(events []xdr.DiagnosticEvent) []Record {
	r := newReconstructor(len(events))
	for i, ev := range events {
		r.add(i, ev)
	}
	return r.records
}

// reconstructor holds the state of a single reconstruction.
type reconstructor struct {
	depth   int
	records []Record
}

func newReconstructor(n int) *reconstructor {
	return &reconstructor{records: make([]Record, 0, n)}
}

func (r *reconstructor) malformed(err error) {
	r.records = append(r.records, Record{Kind: Malformed, Depth: r.depth, Err: err})
}

func (r *reconstructor) add(i int, ev xdr.DiagnosticEvent) {
	topics, err := decodeTopics(ev.Event)
	if err != nil {
		r.malformed(fmt.Errorf("event %d: %w", i, err))
		return
	}

	rec := Record{
		Depth:            r.depth,
		InSuccessfulCall: ev.InSuccessfulContractCall,
	}
	if ev.Event.ContractId != nil {
		addr := scval.NewContractAddress([32]byte(*ev.Event.ContractId))
		rec.EmittedBy = &addr
	}

	switch ev.Event.Type {
	case xdr.ContractEventTypeDiagnostic:
		if len(topics) == 0 {
			return
		}
		head, _ := scval.Text(topics[0])
		switch {
		case head == topicCall && len(topics) >= 3:
			rec.Kind = Call
			rec.Contract = topics[1]
			rec.Function = functionName(topics[2])
			r.depth++
		case head == topicReturn && len(topics) >= 2:
			if r.depth > 0 {
				r.depth--
			}
			rec.Kind = Return
			rec.Depth = r.depth
			rec.Function = functionName(topics[1])
		case head == topicMetrics:
			return
		default:
			rec.Kind = Diagnostic
			rec.Topics = topics
		}
	case xdr.ContractEventTypeContract:
		rec.Kind = Event
		rec.Topics = topics
	default:
		return
	}

	// A payload that fails to decode leaves the record and its depth change
	// in place; only the data is lost.
	rec.Data, err = decodeData(ev.Event)
	if err != nil {
		rec.Err = fmt.Errorf("event %d: %w", i, err)
	}
	r.records = append(r.records, rec)
}

func decodeTopics(ev xdr.ContractEvent) ([]scval.Value, error) {
	if ev.Body.V0 == nil {
		return []scval.Value{}, nil
	}
	topics, err := scval.DecodeAll(ev.Body.V0.Topics)
	if err != nil {
		return nil, fmt.Errorf("failed to decode topics: %w", err)
	}
	return topics, nil
}

func decodeData(ev xdr.ContractEvent) (scval.Value, error) {
	if ev.Body.V0 == nil {
		return scval.Void{}, nil
	}
	data, err := scval.Decode(ev.Body.V0.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	return data, nil
}

func functionName(v scval.Value) string {
	if s, ok := scval.Text(v); ok {
		return s
	}
	return v.String()
}
