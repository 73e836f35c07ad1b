// Copyright 2022 Molecula Corp. All rights reserved.
package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/expr"
	"github.com/featurebasedb/streamsql/function"
	"github.com/featurebasedb/streamsql/row"
	"github.com/featurebasedb/streamsql/types"
)

// qualifiedRefPlanExpression is a positional read of a column
type qualifiedRefPlanExpression struct {
	columnName  string
	columnIndex int
	dataType    types.DataType
}

func newQualifiedRefPlanExpression(columnName string, columnIndex int, dataType types.DataType) *qualifiedRefPlanExpression {
	return &qualifiedRefPlanExpression{
		columnName:  columnName,
		columnIndex: columnIndex,
		dataType:    dataType,
	}
}

func (n *qualifiedRefPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	if n.columnIndex < 0 || n.columnIndex >= currentRow.Len() {
		return nil, streamsql.NewErrInternalf("unable to find column '%d' in current row", n.columnIndex)
	}
	return currentRow.Get(n.columnIndex), nil
}

func (n *qualifiedRefPlanExpression) Type() types.DataType {
	return n.dataType
}

// String renders the column as SOURCE_COLUMN.
func (n *qualifiedRefPlanExpression) String() string {
	return strings.ReplaceAll(n.columnName, ".", "_")
}

func (n *qualifiedRefPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["columnName"] = n.columnName
	result["columnIndex"] = n.columnIndex
	result["dataType"] = n.dataType.TypeDescription()
	return result
}

func (n *qualifiedRefPlanExpression) Children() []planExpression {
	return []planExpression{}
}

// literalPlanExpression is a constant of any primitive type, or null
type literalPlanExpression struct {
	value    interface{}
	dataType types.DataType
}

func newLiteralPlanExpression(value interface{}, dataType types.DataType) *literalPlanExpression {
	return &literalPlanExpression{
		value:    value,
		dataType: dataType,
	}
}

func (n *literalPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	return n.value, nil
}

func (n *literalPlanExpression) Type() types.DataType {
	return n.dataType
}

func (n *literalPlanExpression) String() string {
	switch v := n.value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (n *literalPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["value"] = n.value
	result["dataType"] = n.dataType.TypeDescription()
	return result
}

func (n *literalPlanExpression) Children() []planExpression {
	return []planExpression{}
}

// unaryOpPlanExpression is a unary minus or plus
type unaryOpPlanExpression struct {
	op       expr.ArithmeticOp
	rhs      planExpression
	dataType types.DataType
}

func newUnaryOpPlanExpression(op expr.ArithmeticOp, rhs planExpression, dataType types.DataType) *unaryOpPlanExpression {
	return &unaryOpPlanExpression{
		op:       op,
		rhs:      rhs,
		dataType: dataType,
	}
}

func (n *unaryOpPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	rhs, err := n.rhs.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	if rhs == nil || n.op == expr.OpAdd {
		return rhs, nil
	}
	switch v := rhs.(type) {
	case int32:
		return -v, nil
	case int64:
		return -v, nil
	case float64:
		return -v, nil
	default:
		return nil, streamsql.NewErrInternalf("unexpected operand type '%T'", rhs)
	}
}

func (n *unaryOpPlanExpression) Type() types.DataType {
	return n.dataType
}

func (n *unaryOpPlanExpression) String() string {
	return fmt.Sprintf("(%s%s)", n.op, n.rhs)
}

func (n *unaryOpPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["op"] = n.op.String()
	result["dataType"] = n.dataType.TypeDescription()
	result["rhs"] = n.rhs.Plan()
	return result
}

func (n *unaryOpPlanExpression) Children() []planExpression {
	return []planExpression{n.rhs}
}

// arithmeticPlanExpression is a binary arithmetic operation. Both operands
// are widened to dataType before the operation.
type arithmeticPlanExpression struct {
	op       expr.ArithmeticOp
	lhs      planExpression
	rhs      planExpression
	dataType types.DataType
}

func newArithmeticPlanExpression(lhs planExpression, op expr.ArithmeticOp, rhs planExpression, dataType types.DataType) *arithmeticPlanExpression {
	return &arithmeticPlanExpression{
		op:       op,
		lhs:      lhs,
		rhs:      rhs,
		dataType: dataType,
	}
}

func (n *arithmeticPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	lhs, err := n.lhs.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	rhs, err := n.rhs.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	if lhs == nil || rhs == nil {
		return nil, nil
	}

	switch n.dataType.(type) {
	case *types.DataTypeDouble:
		l, lok := toFloat64(lhs)
		r, rok := toFloat64(rhs)
		if !lok || !rok {
			return nil, streamsql.NewErrInternalf("unexpected operand types '%T', '%T'", lhs, rhs)
		}
		return doubleArithmetic(n.op, l, r), nil

	case *types.DataTypeBigint:
		l, lok := toInt64(lhs)
		r, rok := toInt64(rhs)
		if !lok || !rok {
			return nil, streamsql.NewErrInternalf("unexpected operand types '%T', '%T'", lhs, rhs)
		}
		return bigintArithmetic(n.op, l, r)

	case *types.DataTypeInteger:
		l, lok := lhs.(int32)
		r, rok := rhs.(int32)
		if !lok || !rok {
			return nil, streamsql.NewErrInternalf("unexpected operand types '%T', '%T'", lhs, rhs)
		}
		return integerArithmetic(n.op, l, r)

	default:
		return nil, streamsql.NewErrInternalf("unhandled arithmetic type '%s'", n.dataType.TypeDescription())
	}
}

func doubleArithmetic(op expr.ArithmeticOp, l, r float64) float64 {
	switch op {
	case expr.OpAdd:
		return l + r
	case expr.OpSubtract:
		return l - r
	case expr.OpMultiply:
		return l * r
	case expr.OpDivide:
		return l / r
	default:
		return math.Mod(l, r)
	}
}

func bigintArithmetic(op expr.ArithmeticOp, l, r int64) (interface{}, error) {
	switch op {
	case expr.OpAdd:
		return l + r, nil
	case expr.OpSubtract:
		return l - r, nil
	case expr.OpMultiply:
		return l * r, nil
	}
	if r == 0 {
		return nil, streamsql.NewErrDivisionByZero()
	}
	if op == expr.OpDivide {
		return l / r, nil
	}
	return l % r, nil
}

func integerArithmetic(op expr.ArithmeticOp, l, r int32) (interface{}, error) {
	switch op {
	case expr.OpAdd:
		return l + r, nil
	case expr.OpSubtract:
		return l - r, nil
	case expr.OpMultiply:
		return l * r, nil
	}
	if r == 0 {
		return nil, streamsql.NewErrDivisionByZero()
	}
	if op == expr.OpDivide {
		return l / r, nil
	}
	return l % r, nil
}

func (n *arithmeticPlanExpression) Type() types.DataType {
	return n.dataType
}

func (n *arithmeticPlanExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", n.lhs, n.op, n.rhs)
}

func (n *arithmeticPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["op"] = n.op.String()
	result["dataType"] = n.dataType.TypeDescription()
	result["lhs"] = n.lhs.Plan()
	result["rhs"] = n.rhs.Plan()
	return result
}

func (n *arithmeticPlanExpression) Children() []planExpression {
	return []planExpression{n.lhs, n.rhs}
}

// comparisonPlanExpression compares two operands after widening them to
// operandType. A null operand makes the comparison false.
type comparisonPlanExpression struct {
	op          expr.ComparisonOp
	lhs         planExpression
	rhs         planExpression
	operandType types.DataType
}

func newComparisonPlanExpression(lhs planExpression, op expr.ComparisonOp, rhs planExpression, operandType types.DataType) *comparisonPlanExpression {
	return &comparisonPlanExpression{
		op:          op,
		lhs:         lhs,
		rhs:         rhs,
		operandType: operandType,
	}
}

func (n *comparisonPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	lhs, err := n.lhs.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	rhs, err := n.rhs.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	return compareValues(n.op, n.operandType, lhs, rhs)
}

// compareValues applies op to two values of (or widenable to) operandType.
func compareValues(op expr.ComparisonOp, operandType types.DataType, lhs, rhs interface{}) (bool, error) {
	if lhs == nil || rhs == nil {
		return false, nil
	}
	switch operandType.(type) {
	case *types.DataTypeDouble:
		l, lok := toFloat64(lhs)
		r, rok := toFloat64(rhs)
		if lok && rok {
			return compareOrdered(op, l, r), nil
		}
	case *types.DataTypeInteger, *types.DataTypeBigint:
		l, lok := toInt64(lhs)
		r, rok := toInt64(rhs)
		if lok && rok {
			return compareOrdered(op, l, r), nil
		}
	case *types.DataTypeString:
		l, lok := lhs.(string)
		r, rok := rhs.(string)
		if lok && rok {
			return compareOrdered(op, l, r), nil
		}
	case *types.DataTypeBoolean:
		l, lok := lhs.(bool)
		r, rok := rhs.(bool)
		if lok && rok {
			if op == expr.OpEqual {
				return l == r, nil
			}
			return l != r, nil
		}
	}
	return false, streamsql.NewErrInternalf("unexpected comparison operand types '%T', '%T'", lhs, rhs)
}

func compareOrdered[T int64 | float64 | string](op expr.ComparisonOp, l, r T) bool {
	switch op {
	case expr.OpEqual:
		return l == r
	case expr.OpNotEqual:
		return l != r
	case expr.OpLessThan:
		return l < r
	case expr.OpLessThanOrEqual:
		return l <= r
	case expr.OpGreaterThan:
		return l > r
	default:
		return l >= r
	}
}

func (n *comparisonPlanExpression) Type() types.DataType {
	return types.NewDataTypeBoolean()
}

func (n *comparisonPlanExpression) String() string {
	return fmt.Sprintf("((%s == null || %s == null) ? false : (%s %s %s))", n.lhs, n.rhs, n.lhs, n.op, n.rhs)
}

func (n *comparisonPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["op"] = n.op.String()
	result["operandType"] = n.operandType.TypeDescription()
	result["lhs"] = n.lhs.Plan()
	result["rhs"] = n.rhs.Plan()
	return result
}

func (n *comparisonPlanExpression) Children() []planExpression {
	return []planExpression{n.lhs, n.rhs}
}

// betweenPlanExpression is min <= value <= max
type betweenPlanExpression struct {
	value       planExpression
	lower       planExpression
	upper       planExpression
	operandType types.DataType
}

func newBetweenPlanExpression(value, lower, upper planExpression, operandType types.DataType) *betweenPlanExpression {
	return &betweenPlanExpression{
		value:       value,
		lower:       lower,
		upper:       upper,
		operandType: operandType,
	}
}

func (n *betweenPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	v, err := n.value.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	lo, err := n.lower.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	hi, err := n.upper.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	ok, err := compareValues(expr.OpGreaterThanOrEqual, n.operandType, v, lo)
	if err != nil || !ok {
		return false, err
	}
	return compareValues(expr.OpLessThanOrEqual, n.operandType, v, hi)
}

func (n *betweenPlanExpression) Type() types.DataType {
	return types.NewDataTypeBoolean()
}

func (n *betweenPlanExpression) String() string {
	return fmt.Sprintf("(%s BETWEEN %s AND %s)", n.value, n.lower, n.upper)
}

func (n *betweenPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["operandType"] = n.operandType.TypeDescription()
	result["value"] = n.value.Plan()
	result["lower"] = n.lower.Plan()
	result["upper"] = n.upper.Plan()
	return result
}

func (n *betweenPlanExpression) Children() []planExpression {
	return []planExpression{n.value, n.lower, n.upper}
}

// logicalPlanExpression is AND or OR with three-valued logic. The right hand
// side is not evaluated when the left hand side decides the result.
type logicalPlanExpression struct {
	op  expr.LogicalOp
	lhs planExpression
	rhs planExpression
}

func newLogicalPlanExpression(lhs planExpression, op expr.LogicalOp, rhs planExpression) *logicalPlanExpression {
	return &logicalPlanExpression{
		op:  op,
		lhs: lhs,
		rhs: rhs,
	}
}

func (n *logicalPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	lhs, err := n.lhs.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	// the value which decides the result on its own
	decisive := n.op == expr.OpOr
	if lhs != nil && lhs.(bool) == decisive {
		return decisive, nil
	}
	rhs, err := n.rhs.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	if rhs != nil && rhs.(bool) == decisive {
		return decisive, nil
	}
	if lhs == nil || rhs == nil {
		return nil, nil
	}
	return !decisive, nil
}

func (n *logicalPlanExpression) Type() types.DataType {
	return types.NewDataTypeBoolean()
}

func (n *logicalPlanExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", n.lhs, n.op, n.rhs)
}

func (n *logicalPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["op"] = n.op.String()
	result["lhs"] = n.lhs.Plan()
	result["rhs"] = n.rhs.Plan()
	return result
}

func (n *logicalPlanExpression) Children() []planExpression {
	return []planExpression{n.lhs, n.rhs}
}

// notPlanExpression negates a boolean; NOT null is null
type notPlanExpression struct {
	rhs planExpression
}

func newNotPlanExpression(rhs planExpression) *notPlanExpression {
	return &notPlanExpression{rhs: rhs}
}

func (n *notPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	rhs, err := n.rhs.Evaluate(currentRow)
	if err != nil || rhs == nil {
		return nil, err
	}
	return !rhs.(bool), nil
}

func (n *notPlanExpression) Type() types.DataType {
	return types.NewDataTypeBoolean()
}

func (n *notPlanExpression) String() string {
	return fmt.Sprintf("(NOT %s)", n.rhs)
}

func (n *notPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["rhs"] = n.rhs.Plan()
	return result
}

func (n *notPlanExpression) Children() []planExpression {
	return []planExpression{n.rhs}
}

// nullTestPlanExpression is IS NULL, or IS NOT NULL when negated
type nullTestPlanExpression struct {
	rhs     planExpression
	negated bool
}

func newNullTestPlanExpression(rhs planExpression, negated bool) *nullTestPlanExpression {
	return &nullTestPlanExpression{
		rhs:     rhs,
		negated: negated,
	}
}

func (n *nullTestPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	rhs, err := n.rhs.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	return (rhs == nil) != n.negated, nil
}

func (n *nullTestPlanExpression) Type() types.DataType {
	return types.NewDataTypeBoolean()
}

func (n *nullTestPlanExpression) String() string {
	if n.negated {
		return fmt.Sprintf("(%s != null)", n.rhs)
	}
	return fmt.Sprintf("(%s == null)", n.rhs)
}

func (n *nullTestPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["negated"] = n.negated
	result["rhs"] = n.rhs.Plan()
	return result
}

func (n *nullTestPlanExpression) Children() []planExpression {
	return []planExpression{n.rhs}
}

// casePlanExpression is a searched case. Blocks are tried in order and only
// the body of the selected block is evaluated.
type casePlanExpression struct {
	blocks   []*caseBlockPlanExpression
	elseExpr planExpression

	resultDataType types.DataType
}

func newCasePlanExpression(blocks []*caseBlockPlanExpression, elseExpr planExpression, dataType types.DataType) *casePlanExpression {
	return &casePlanExpression{
		blocks:         blocks,
		elseExpr:       elseExpr,
		resultDataType: dataType,
	}
}

func (n *casePlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	for _, block := range n.blocks {
		cond, err := block.condition.Evaluate(currentRow)
		if err != nil {
			return nil, err
		}
		if cond != nil && cond.(bool) {
			return block.body.Evaluate(currentRow)
		}
	}
	if n.elseExpr != nil {
		return n.elseExpr.Evaluate(currentRow)
	}
	return nil, nil
}

func (n *casePlanExpression) Type() types.DataType {
	return n.resultDataType
}

func (n *casePlanExpression) String() string {
	result := "case"
	for _, blk := range n.blocks {
		result += fmt.Sprintf(" %s", blk.String())
	}
	if n.elseExpr != nil {
		result += fmt.Sprintf(" else %s end", n.elseExpr)
	} else {
		result += " end"
	}
	return result
}

func (n *casePlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["dataType"] = n.Type().TypeDescription()
	if n.elseExpr != nil {
		result["elseExpr"] = n.elseExpr.Plan()
	}
	ps := make([]interface{}, 0)
	for _, e := range n.blocks {
		ps = append(ps, e.Plan())
	}
	result["blocks"] = ps
	return result
}

func (n *casePlanExpression) Children() []planExpression {
	result := make([]planExpression, 0, len(n.blocks)+1)
	for _, b := range n.blocks {
		result = append(result, b)
	}
	if n.elseExpr != nil {
		result = append(result, n.elseExpr)
	}
	return result
}

// caseBlockPlanExpression is one WHEN ... THEN ... of a case
type caseBlockPlanExpression struct {
	condition planExpression
	body      planExpression
}

func newCaseBlockPlanExpression(condition planExpression, body planExpression) *caseBlockPlanExpression {
	return &caseBlockPlanExpression{
		condition: condition,
		body:      body,
	}
}

func (n *caseBlockPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	return n.body.Evaluate(currentRow)
}

func (n *caseBlockPlanExpression) Type() types.DataType {
	return n.body.Type()
}

func (n *caseBlockPlanExpression) String() string {
	return fmt.Sprintf("when %s then %s", n.condition, n.body)
}

func (n *caseBlockPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["condition"] = n.condition.Plan()
	result["body"] = n.body.Plan()
	return result
}

func (n *caseBlockPlanExpression) Children() []planExpression {
	return []planExpression{n.condition, n.body}
}

// subscriptPlanExpression indexes an array or looks up a map key
type subscriptPlanExpression struct {
	base     planExpression
	index    planExpression
	dataType types.DataType
}

func newSubscriptPlanExpression(base planExpression, index planExpression, dataType types.DataType) *subscriptPlanExpression {
	return &subscriptPlanExpression{
		base:     base,
		index:    index,
		dataType: dataType,
	}
}

func (n *subscriptPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	base, err := n.base.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	index, err := n.index.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	if base == nil || index == nil {
		return nil, nil
	}

	switch b := base.(type) {
	case []interface{}:
		i, ok := toInt64(index)
		if !ok {
			return nil, streamsql.NewErrInternalf("unexpected array index type '%T'", index)
		}
		if i < 0 || i >= int64(len(b)) {
			return nil, streamsql.NewErrIndexOutOfRange(i, len(b))
		}
		return b[i], nil
	case map[string]interface{}:
		k, ok := index.(string)
		if !ok {
			return nil, streamsql.NewErrInternalf("unexpected map key type '%T'", index)
		}
		return b[k], nil
	default:
		return nil, streamsql.NewErrInternalf("unexpected subscript base type '%T'", base)
	}
}

func (n *subscriptPlanExpression) Type() types.DataType {
	return n.dataType
}

func (n *subscriptPlanExpression) String() string {
	return fmt.Sprintf("%s[%s]", n.base, n.index)
}

func (n *subscriptPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["dataType"] = n.dataType.TypeDescription()
	result["base"] = n.base.Plan()
	result["index"] = n.index.Plan()
	return result
}

func (n *subscriptPlanExpression) Children() []planExpression {
	return []planExpression{n.base, n.index}
}

// dereferencePlanExpression reads a struct field resolved at compile time
type dereferencePlanExpression struct {
	base       planExpression
	fieldName  string
	fieldIndex int
	dataType   types.DataType
}

func newDereferencePlanExpression(base planExpression, fieldName string, fieldIndex int, dataType types.DataType) *dereferencePlanExpression {
	return &dereferencePlanExpression{
		base:       base,
		fieldName:  fieldName,
		fieldIndex: fieldIndex,
		dataType:   dataType,
	}
}

func (n *dereferencePlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	base, err := n.base.Evaluate(currentRow)
	if err != nil || base == nil {
		return nil, err
	}
	s, ok := base.(*row.Struct)
	if !ok {
		return nil, streamsql.NewErrInternalf("unexpected struct type '%T'", base)
	}
	return s.Get(n.fieldIndex), nil
}

func (n *dereferencePlanExpression) Type() types.DataType {
	return n.dataType
}

func (n *dereferencePlanExpression) String() string {
	return fmt.Sprintf("%s->%s", n.base, n.fieldName)
}

func (n *dereferencePlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["fieldName"] = n.fieldName
	result["fieldIndex"] = n.fieldIndex
	result["dataType"] = n.dataType.TypeDescription()
	result["base"] = n.base.Plan()
	return result
}

func (n *dereferencePlanExpression) Children() []planExpression {
	return []planExpression{n.base}
}

// callPlanExpression invokes the function instance bound to this call site
type callPlanExpression struct {
	id       int
	name     string
	fn       function.Function
	args     []planExpression
	dataType types.DataType
}

func newCallPlanExpression(id int, name string, fn function.Function, args []planExpression, dataType types.DataType) *callPlanExpression {
	return &callPlanExpression{
		id:       id,
		name:     name,
		fn:       fn,
		args:     args,
		dataType: dataType,
	}
}

func (n *callPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	args := make([]interface{}, len(n.args))
	for i, a := range n.args {
		v, err := a.Evaluate(currentRow)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return n.fn.Evaluate(args)
}

func (n *callPlanExpression) Type() types.DataType {
	return n.dataType
}

// identifier is the NAME_ID symbol of the bound instance.
func (n *callPlanExpression) identifier() string {
	return fmt.Sprintf("%s_%d", n.name, n.id)
}

func (n *callPlanExpression) String() string {
	args := ""
	for idx, arg := range n.args {
		if idx > 0 {
			args += ", "
		}
		args += arg.String()
	}
	return fmt.Sprintf("%s.evaluate(%s)", n.identifier(), args)
}

func (n *callPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["name"] = n.name
	result["id"] = n.id
	result["dataType"] = n.Type().TypeDescription()
	ps := make([]interface{}, 0)
	for _, e := range n.args {
		ps = append(ps, e.Plan())
	}
	result["args"] = ps
	return result
}

func (n *callPlanExpression) Children() []planExpression {
	return n.args
}

func toInt64(v interface{}) (int64, bool) {
	switch vv := v.(type) {
	case int32:
		return int64(vv), true
	case int64:
		return vv, true
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch vv := v.(type) {
	case int32:
		return float64(vv), true
	case int64:
		return float64(vv), true
	case float64:
		return vv, true
	}
	return 0, false
}
