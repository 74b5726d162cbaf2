// Package qot defines the Query Operation Tree: the singly linked list of
// operations a chained builder call lowers into, plus the symbol table that
// tracks projected shape across select/join/groupBy.
package qot

import "github.com/linqsql/linqsql/internal/exprir"

type Kind int

const (
	KindFrom Kind = iota + 1
	KindWhere
	KindSelect
	KindDistinct
	KindOrderBy
	KindThenBy
	KindReverse
	KindTake
	KindSkip
	KindGroupBy
	KindJoin
	KindUnion
	KindIntersect
	KindExcept
	KindCount
	KindSum
	KindAverage
	KindMin
	KindMax
	KindFirst
	KindSingle
	KindLast
	KindAny
	KindAll
	KindContains
	KindToArray
	KindInsert
	KindUpdate
	KindDelete
)

// Operation is implemented by every node in the tree. Mutation roots
// (Insert/Update/Delete) and From return nil from Source.
type Operation interface {
	Kind() Kind
	Source() Operation
}

// JoinKind enumerates the supported join flavours.
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
)

type From struct {
	Table  string
	Schema string
}

func (*From) Kind() Kind        { return KindFrom }
func (*From) Source() Operation { return nil }

type Where struct {
	Src       Operation
	Predicate exprir.Node
}

func (*Where) Kind() Kind        { return KindWhere }
func (o *Where) Source() Operation { return o.Src }

type Select struct {
	Src      Operation
	Selector exprir.Node
}

func (*Select) Kind() Kind        { return KindSelect }
func (o *Select) Source() Operation { return o.Src }

type Distinct struct {
	Src Operation
}

func (*Distinct) Kind() Kind        { return KindDistinct }
func (o *Distinct) Source() Operation { return o.Src }

type OrderBy struct {
	Src        Operation
	KeySelector exprir.Node
	Descending bool
}

func (*OrderBy) Kind() Kind        { return KindOrderBy }
func (o *OrderBy) Source() Operation { return o.Src }

type ThenBy struct {
	Src        Operation
	KeySelector exprir.Node
	Descending bool
}

func (*ThenBy) Kind() Kind        { return KindThenBy }
func (o *ThenBy) Source() Operation { return o.Src }

type Reverse struct {
	Src Operation
}

func (*Reverse) Kind() Kind        { return KindReverse }
func (o *Reverse) Source() Operation { return o.Src }

// Take/Skip counts are lowered like any other expression: a literal count
// is auto-parameterised, a `p.pageSize`-style reference lowers to a Param.
type Take struct {
	Src   Operation
	Count exprir.Node
}

func (*Take) Kind() Kind        { return KindTake }
func (o *Take) Source() Operation { return o.Src }

type Skip struct {
	Src   Operation
	Count exprir.Node
}

func (*Skip) Kind() Kind        { return KindSkip }
func (o *Skip) Source() Operation { return o.Src }

type GroupBy struct {
	Src        Operation
	KeySelector exprir.Node
}

func (*GroupBy) Kind() Kind        { return KindGroupBy }
func (o *GroupBy) Source() Operation { return o.Src }

type Join struct {
	Src            Operation
	Inner          Operation
	OuterKey       exprir.Node
	InnerKey       exprir.Node
	ResultSelector exprir.Node
	JoinKind       JoinKind
}

func (*Join) Kind() Kind        { return KindJoin }
func (o *Join) Source() Operation { return o.Src }

type Union struct {
	Src    Operation
	Second Operation
}

func (*Union) Kind() Kind        { return KindUnion }
func (o *Union) Source() Operation { return o.Src }

type Intersect struct {
	Src    Operation
	Second Operation
}

func (*Intersect) Kind() Kind        { return KindIntersect }
func (o *Intersect) Source() Operation { return o.Src }

type Except struct {
	Src    Operation
	Second Operation
}

func (*Except) Kind() Kind        { return KindExcept }
func (o *Except) Source() Operation { return o.Src }

// Count, Sum, Average, Min, Max are terminal aggregate ops.
type Count struct {
	Src       Operation
	Predicate exprir.Node // nil when unfiltered
}

func (*Count) Kind() Kind        { return KindCount }
func (o *Count) Source() Operation { return o.Src }

type Sum struct {
	Src      Operation
	Selector exprir.Node
}

func (*Sum) Kind() Kind        { return KindSum }
func (o *Sum) Source() Operation { return o.Src }

type Average struct {
	Src      Operation
	Selector exprir.Node
}

func (*Average) Kind() Kind        { return KindAverage }
func (o *Average) Source() Operation { return o.Src }

type Min struct {
	Src      Operation
	Selector exprir.Node
}

func (*Min) Kind() Kind        { return KindMin }
func (o *Min) Source() Operation { return o.Src }

type Max struct {
	Src      Operation
	Selector exprir.Node
}

func (*Max) Kind() Kind        { return KindMax }
func (o *Max) Source() Operation { return o.Src }

// First, Single, Last are terminal element ops. OrDefault controls whether
// the driver is expected to error (false) or return the zero value (true)
// on zero matching rows; it has no bearing on the generated SQL.
type First struct {
	Src       Operation
	Predicate exprir.Node
	OrDefault bool
}

func (*First) Kind() Kind        { return KindFirst }
func (o *First) Source() Operation { return o.Src }

type Single struct {
	Src       Operation
	Predicate exprir.Node
	OrDefault bool
}

func (*Single) Kind() Kind        { return KindSingle }
func (o *Single) Source() Operation { return o.Src }

type Last struct {
	Src       Operation
	Predicate exprir.Node
	OrDefault bool
}

func (*Last) Kind() Kind        { return KindLast }
func (o *Last) Source() Operation { return o.Src }

type Any struct {
	Src       Operation
	Predicate exprir.Node // nil for a bare existence check
}

func (*Any) Kind() Kind        { return KindAny }
func (o *Any) Source() Operation { return o.Src }

type All struct {
	Src       Operation
	Predicate exprir.Node
}

func (*All) Kind() Kind        { return KindAll }
func (o *All) Source() Operation { return o.Src }

type Contains struct {
	Src   Operation
	Value exprir.Node
}

func (*Contains) Kind() Kind        { return KindContains }
func (o *Contains) Source() Operation { return o.Src }

type ToArray struct {
	Src Operation
}

func (*ToArray) Kind() Kind        { return KindToArray }
func (o *ToArray) Source() Operation { return o.Src }

// Insert, Update, Delete are mutation roots; they never have a Source.

type Insert struct {
	Table     string
	Schema    string
	Values    *exprir.Object
	Returning exprir.Node // nil, an allColumns marker, or a projection
}

func (*Insert) Kind() Kind        { return KindInsert }
func (*Insert) Source() Operation { return nil }

type Update struct {
	Table                 string
	Schema                string
	Assignments           *exprir.Object
	Predicate              exprir.Node
	AllowFullTableUpdate bool
}

func (*Update) Kind() Kind        { return KindUpdate }
func (*Update) Source() Operation { return nil }

type Delete struct {
	Table                 string
	Schema                string
	Predicate              exprir.Node
	AllowFullTableDelete bool
}

func (*Delete) Kind() Kind        { return KindDelete }
func (*Delete) Source() Operation { return nil }
