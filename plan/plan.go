// Package plan holds the lowered Plan Handle (§3.5): the Query Operation
// Tree produced once per defineXxx call, its auto-coined parameter values,
// and the declared external-parameter schema. A Handle is built once and
// finalized many times against different runtime parameter maps.
package plan

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/linqsql/linqsql/compileerr"
	"github.com/linqsql/linqsql/internal/qot"
	"github.com/linqsql/linqsql/set"
)

// Handle is the result of a defineSelect/defineInsert/defineUpdate/
// defineDelete call: a compiled, dialect-neutral plan ready to be
// materialised into SQL many times.
type Handle struct {
	// ID identifies this plan for log correlation, coined once at build
	// time as a sortable UUID v7.
	ID string

	Operation      qot.Operation
	AutoParams     map[string]any
	DeclaredParams *set.HashSet[string]
}

// New wraps a lowered operation tree into a Handle, minting its correlation
// ID as a UUID v7 so handles sort naturally by creation order in logs.
func New(op qot.Operation, autoParams map[string]any, declared *set.HashSet[string]) (*Handle, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, compileerr.Config("plan", "failed to mint plan id: %v", err)
	}

	return &Handle{
		ID:             id.String(),
		Operation:      op,
		AutoParams:     autoParams,
		DeclaredParams: declared,
	}, nil
}

// Finalize merges the plan's auto-coined parameters with the caller's
// runtime values, without re-parsing or re-lowering. It fails if userParams
// is missing a declared parameter or supplies one the plan never declared.
func (h *Handle) Finalize(userParams map[string]any) (qot.Operation, map[string]any, error) {
	for _, name := range h.DeclaredParams.Values() {
		if _, ok := userParams[name]; !ok {
			return nil, nil, compileerr.Config("finalize", "missing declared parameter %q", name)
		}
	}

	for name := range userParams {
		if !h.DeclaredParams.Contains(name) {
			return nil, nil, compileerr.Config("finalize", "unexpected parameter %q is not declared by the plan", name)
		}
	}

	merged := make(map[string]any, len(h.AutoParams)+len(userParams))

	for k, v := range h.AutoParams {
		merged[k] = v
	}

	for k, v := range userParams {
		merged[k] = v
	}

	return h.Operation, merged, nil
}

func (h *Handle) String() string {
	return fmt.Sprintf("plan.Handle{id=%s, autoParams=%d, declaredParams=%d}", h.ID, len(h.AutoParams), h.DeclaredParams.Size())
}
