package linqsql

import (
	"github.com/linqsql/linqsql/internal/capture"
	"github.com/linqsql/linqsql/internal/jsparser"
	"github.com/linqsql/linqsql/internal/lower"
	"github.com/linqsql/linqsql/internal/parsecache"
	"github.com/linqsql/linqsql/internal/qot"
	"github.com/linqsql/linqsql/plan"
	"github.com/linqsql/linqsql/set"
)

// lowered is what the parse cache memoises per builder source string: the
// root operation plus the auto-coined and declared parameter state the
// lowerer accumulated while building it.
type lowered struct {
	operation      qot.Operation
	autoParams     map[string]any
	declaredParams *set.HashSet[string]
}

var cache = parsecache.New[lowered](parsecache.DefaultCapacity)

// define runs capture -> jsparser -> lower, consulting the parse cache
// first, then wraps the result in a fresh plan.Handle. The cache is keyed on
// the builder source text alone, so the resulting operation tree and
// declared-parameter schema are shared across calls; only the Handle's ID
// and the runtime parameter values differ per call.
func define(builder string) (*Handle, error) {
	source, err := capture.Text(builder)
	if err != nil {
		return nil, err
	}

	entry, ok := cache.Get(source)
	if !ok {
		arrow, err := jsparser.Parse(source)
		if err != nil {
			return nil, err
		}

		op, ctx, err := lower.Chain(arrow)
		if err != nil {
			return nil, err
		}

		entry = lowered{
			operation:      op,
			autoParams:     ctx.AutoParams,
			declaredParams: ctx.DeclaredParams,
		}

		cache.Set(source, entry)

		logger.Debugf("lowered and cached builder chain (%d bytes)", len(source))
	}

	return plan.New(entry.operation, entry.autoParams, entry.declaredParams)
}
