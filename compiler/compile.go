// Copyright 2022 Molecula Corp. All rights reserved.
package compiler

import (
	"fmt"
	"strings"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/errors"
	"github.com/featurebasedb/streamsql/expr"
	"github.com/featurebasedb/streamsql/function"
	"github.com/featurebasedb/streamsql/logger"
	"github.com/featurebasedb/streamsql/schema"
	"github.com/featurebasedb/streamsql/types"
)

// CompilerOption configures a compilation.
type CompilerOption func(c *compiler)

// OptCompilerLogger sets the logger which receives the compiled form of
// each expression at debug level.
func OptCompilerLogger(l logger.Logger) CompilerOption {
	return func(c *compiler) {
		c.logger = l
	}
}

// compiler holds the state of a single compilation.
type compiler struct {
	schema   *schema.Schema
	registry function.Registry
	logger   logger.Logger

	// id of the next function call site
	nextID   int
	bindings []FunctionBinding
}

// Compile type-checks e against s and returns an evaluator for it. Column
// references are bound to schema positions and every function call site is
// bound to its own instance resolved from registry.
func Compile(s *schema.Schema, e expr.Expr, registry function.Registry, opts ...CompilerOption) (*Evaluator, error) {
	c := &compiler{
		schema:   s,
		registry: registry,
		logger:   logger.NopLogger,
	}
	for _, opt := range opts {
		opt(c)
	}

	root, err := c.compileExpr(e)
	if err != nil {
		CounterCompileErrors.WithLabelValues(string(errors.CodeOf(err))).Inc()
		return nil, err
	}
	CounterExpressionsCompiled.Inc()

	ev := &Evaluator{
		schema:   s,
		root:     root,
		bindings: c.bindings,
	}
	c.logger.Debugf("compiled %s as %s", e, ev)
	return ev, nil
}

func (c *compiler) compileExpr(e expr.Expr) (planExpression, error) {
	if e == nil {
		return nil, streamsql.NewErrInternalf("unexpected nil expression")
	}
	switch e := e.(type) {
	case *expr.ColumnRef:
		return c.compileColumnRef(e)

	case *expr.BooleanLiteral:
		return newLiteralPlanExpression(e.Value, types.NewDataTypeBoolean()), nil

	case *expr.IntegerLiteral:
		return newLiteralPlanExpression(e.Value, types.NewDataTypeInteger()), nil

	case *expr.LongLiteral:
		return newLiteralPlanExpression(e.Value, types.NewDataTypeBigint()), nil

	case *expr.DoubleLiteral:
		return newLiteralPlanExpression(e.Value, types.NewDataTypeDouble()), nil

	case *expr.StringLiteral:
		return newLiteralPlanExpression(e.Value, types.NewDataTypeString()), nil

	case *expr.NullLiteral:
		return newLiteralPlanExpression(nil, types.NewDataTypeVoid()), nil

	case *expr.ArithmeticUnary:
		return c.compileUnaryExpr(e)

	case *expr.ArithmeticBinary:
		return c.compileArithmeticExpr(e)

	case *expr.Comparison:
		return c.compileComparisonExpr(e)

	case *expr.LogicalBinary:
		lhs, err := c.compileBooleanOperand(e.Left)
		if err != nil {
			return nil, err
		}
		rhs, err := c.compileBooleanOperand(e.Right)
		if err != nil {
			return nil, err
		}
		return newLogicalPlanExpression(lhs, e.Op, rhs), nil

	case *expr.Not:
		rhs, err := c.compileBooleanOperand(e.Operand)
		if err != nil {
			return nil, err
		}
		return newNotPlanExpression(rhs), nil

	case *expr.IsNull:
		rhs, err := c.compileExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		return newNullTestPlanExpression(rhs, false), nil

	case *expr.IsNotNull:
		rhs, err := c.compileExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		return newNullTestPlanExpression(rhs, true), nil

	case *expr.Between:
		return c.compileBetweenExpr(e)

	case *expr.Cast:
		return c.compileCastExpr(e)

	case *expr.Like:
		return c.compileLikeExpr(e)

	case *expr.SearchedCase:
		return c.compileCaseExpr(e)

	case *expr.Subscript:
		return c.compileSubscriptExpr(e)

	case *expr.Dereference:
		return c.compileDereferenceExpr(e)

	case *expr.FunctionCall:
		return c.compileCallExpr(e)

	default:
		return nil, streamsql.NewErrInternalf("unexpected SQL expression type: %T", e)
	}
}

// compileColumnRef binds a column reference to its position. A qualified
// SOURCE.COLUMN is tried first, then the bare column name.
func (c *compiler) compileColumnRef(e *expr.ColumnRef) (planExpression, error) {
	idx := -1
	if e.Source != "" {
		idx = c.schema.FieldIndex(e.Source + "." + e.Name)
	}
	if idx < 0 {
		idx = c.schema.FieldIndex(e.Name)
	}
	if idx < 0 {
		return nil, streamsql.NewErrColumnNotFound(e.String())
	}
	f := c.schema.Field(idx)
	return newQualifiedRefPlanExpression(f.Name, idx, f.Type), nil
}

func (c *compiler) compileUnaryExpr(e *expr.ArithmeticUnary) (planExpression, error) {
	if e.Op != expr.OpAdd && e.Op != expr.OpSubtract {
		return nil, streamsql.NewErrInternalf("unexpected unary operator '%s'", e.Op)
	}
	rhs, err := c.compileExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	dataType := rhs.Type()
	if types.IsVoid(dataType) {
		return rhs, nil
	}
	if !types.IsNumeric(dataType) {
		return nil, streamsql.NewErrTypeIncompatibleWithArithmeticOperator(e.Op.String(), dataType.TypeDescription())
	}
	return newUnaryOpPlanExpression(e.Op, rhs, dataType), nil
}

func (c *compiler) compileArithmeticExpr(e *expr.ArithmeticBinary) (planExpression, error) {
	lhs, err := c.compileExpr(e.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := c.compileExpr(e.Right)
	if err != nil {
		return nil, err
	}
	for _, operand := range []planExpression{lhs, rhs} {
		t := operand.Type()
		if !types.IsVoid(t) && !types.IsNumeric(t) {
			return nil, streamsql.NewErrTypeIncompatibleWithArithmeticOperator(e.Op.String(), t.TypeDescription())
		}
	}
	return newArithmeticPlanExpression(lhs, e.Op, rhs, promote(lhs.Type(), rhs.Type())), nil
}

// promote returns the common type of two numeric or void operands.
func promote(a, b types.DataType) types.DataType {
	switch {
	case types.IsVoid(a) && types.IsVoid(b):
		return types.NewDataTypeInteger()
	case types.IsVoid(a):
		return b
	case types.IsVoid(b):
		return a
	}
	return types.WidestNumeric(a, b)
}

// comparableType returns the type both operands are compared as.
func comparableType(op string, a, b types.DataType, equalityOnly bool) (types.DataType, error) {
	switch {
	case types.IsVoid(a):
		return b, nil
	case types.IsVoid(b):
		return a, nil
	case types.IsNumeric(a) && types.IsNumeric(b):
		return types.WidestNumeric(a, b), nil
	}
	switch a.(type) {
	case *types.DataTypeString:
		if _, ok := b.(*types.DataTypeString); ok {
			return a, nil
		}
	case *types.DataTypeBoolean:
		if _, ok := b.(*types.DataTypeBoolean); ok && equalityOnly {
			return a, nil
		}
	}
	return nil, streamsql.NewErrTypesAreNotComparable(a.TypeDescription(), b.TypeDescription(), op)
}

func (c *compiler) compileComparisonExpr(e *expr.Comparison) (planExpression, error) {
	lhs, err := c.compileExpr(e.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := c.compileExpr(e.Right)
	if err != nil {
		return nil, err
	}
	equality := e.Op == expr.OpEqual || e.Op == expr.OpNotEqual
	operandType, err := comparableType(e.Op.String(), lhs.Type(), rhs.Type(), equality)
	if err != nil {
		return nil, err
	}
	return newComparisonPlanExpression(lhs, e.Op, rhs, operandType), nil
}

func (c *compiler) compileBetweenExpr(e *expr.Between) (planExpression, error) {
	value, err := c.compileExpr(e.Value)
	if err != nil {
		return nil, err
	}
	lower, err := c.compileExpr(e.Min)
	if err != nil {
		return nil, err
	}
	upper, err := c.compileExpr(e.Max)
	if err != nil {
		return nil, err
	}

	operandType := value.Type()
	for _, bound := range []planExpression{lower, upper} {
		t, err := comparableType("BETWEEN", operandType, bound.Type(), false)
		if err != nil {
			return nil, streamsql.NewErrTypeIncompatibleWithBetweenOperator(bound.Type().TypeDescription())
		}
		operandType = t
	}
	return newBetweenPlanExpression(value, lower, upper, operandType), nil
}

// compileBooleanOperand compiles an operand which must be BOOLEAN or NULL.
func (c *compiler) compileBooleanOperand(e expr.Expr) (planExpression, error) {
	p, err := c.compileExpr(e)
	if err != nil {
		return nil, err
	}
	switch p.Type().(type) {
	case *types.DataTypeBoolean, *types.DataTypeVoid:
		return p, nil
	}
	return nil, streamsql.NewErrBooleanExpressionExpected(p.Type().TypeDescription())
}

func (c *compiler) compileCastExpr(e *expr.Cast) (planExpression, error) {
	lhs, err := c.compileExpr(e.Value)
	if err != nil {
		return nil, err
	}
	if e.Type == nil {
		return nil, streamsql.NewErrInternalf("cast without a target type")
	}
	if !castAllowed(lhs.Type(), e.Type) {
		return nil, streamsql.NewErrUnsupportedCast(lhs.Type().TypeDescription(), e.Type.TypeDescription())
	}
	return newCastPlanExpression(lhs, e.Type), nil
}

func (c *compiler) compileLikeExpr(e *expr.Like) (planExpression, error) {
	lhs, err := c.compileExpr(e.Value)
	if err != nil {
		return nil, err
	}
	pattern, err := c.compileExpr(e.Pattern)
	if err != nil {
		return nil, err
	}
	for _, operand := range []planExpression{lhs, pattern} {
		switch operand.Type().(type) {
		case *types.DataTypeString, *types.DataTypeVoid:
		default:
			return nil, streamsql.NewErrTypeIncompatibleWithLikeOperator(operand.Type().TypeDescription())
		}
	}
	return newLikePlanExpression(lhs, pattern), nil
}

func (c *compiler) compileCaseExpr(e *expr.SearchedCase) (planExpression, error) {
	if len(e.WhenClauses) == 0 {
		return nil, streamsql.NewErrInternalf("case without when clauses")
	}

	var resultType types.DataType = types.NewDataTypeVoid()
	checkResult := func(p planExpression) error {
		t := p.Type()
		switch {
		case types.IsVoid(t):
		case types.IsVoid(resultType):
			resultType = t
		case !types.Equal(resultType, t):
			return streamsql.NewErrTypeMismatch(resultType.TypeDescription(), t.TypeDescription())
		}
		return nil
	}

	blocks := make([]*caseBlockPlanExpression, 0, len(e.WhenClauses))
	for _, w := range e.WhenClauses {
		cond, err := c.compileBooleanOperand(w.Operand)
		if err != nil {
			return nil, err
		}
		body, err := c.compileExpr(w.Result)
		if err != nil {
			return nil, err
		}
		if err := checkResult(body); err != nil {
			return nil, err
		}
		blocks = append(blocks, newCaseBlockPlanExpression(cond, body))
	}

	var elseExpr planExpression
	if e.Default != nil {
		var err error
		if elseExpr, err = c.compileExpr(e.Default); err != nil {
			return nil, err
		}
		if err := checkResult(elseExpr); err != nil {
			return nil, err
		}
	}
	return newCasePlanExpression(blocks, elseExpr, resultType), nil
}

func (c *compiler) compileSubscriptExpr(e *expr.Subscript) (planExpression, error) {
	base, err := c.compileExpr(e.Base)
	if err != nil {
		return nil, err
	}
	index, err := c.compileExpr(e.Index)
	if err != nil {
		return nil, err
	}
	indexType := index.Type()

	switch bt := base.Type().(type) {
	case *types.DataTypeArray:
		switch indexType.(type) {
		case *types.DataTypeInteger, *types.DataTypeBigint, *types.DataTypeVoid:
			return newSubscriptPlanExpression(base, index, bt.ElementType), nil
		}
	case *types.DataTypeMap:
		switch indexType.(type) {
		case *types.DataTypeString, *types.DataTypeVoid:
			return newSubscriptPlanExpression(base, index, bt.ValueType), nil
		}
	default:
		return nil, streamsql.NewErrTypeCannotBeSubscripted(bt.TypeDescription())
	}
	return nil, streamsql.NewErrInvalidSubscriptType(base.Type().TypeDescription(), indexType.TypeDescription())
}

func (c *compiler) compileDereferenceExpr(e *expr.Dereference) (planExpression, error) {
	base, err := c.compileExpr(e.Base)
	if err != nil {
		return nil, err
	}
	st, ok := base.Type().(*types.DataTypeStruct)
	if !ok {
		return nil, streamsql.NewErrTypeCannotBeDereferenced(base.Type().TypeDescription())
	}
	idx := st.FieldIndex(e.FieldName)
	if idx < 0 {
		return nil, streamsql.NewErrFieldNotFound(e.FieldName, st.TypeDescription())
	}
	f := st.Fields[idx]
	return newDereferencePlanExpression(base, f.Name, idx, f.Type), nil
}

// compileCallExpr binds the call site to a new function instance. The id is
// taken before the arguments are compiled, so ids follow pre-order.
func (c *compiler) compileCallExpr(e *expr.FunctionCall) (planExpression, error) {
	if c.registry == nil {
		return nil, streamsql.NewErrCallUnknownFunction(e.Name)
	}
	name := strings.ToUpper(e.Name)
	fn, err := c.registry.Resolve(name, len(e.Args))
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, streamsql.NewErrInternalf("registry returned no instance for '%s'", name)
	}
	id := c.nextID
	c.nextID++
	c.bindings = append(c.bindings, FunctionBinding{ID: id, Name: name, Instance: fn})

	args := make([]planExpression, len(e.Args))
	argTypes := make([]types.DataType, len(e.Args))
	for i, a := range e.Args {
		arg, err := c.compileExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = arg
		argTypes[i] = arg.Type()
	}

	dataType, err := fn.ReturnType(argTypes)
	if err != nil {
		return nil, err
	}
	if dataType == nil {
		return nil, streamsql.NewErrInternalf("function '%s' has no return type", name)
	}
	return newCallPlanExpression(id, name, fn, args, dataType), nil
}

// FunctionBinding associates one call site with the instance bound to it.
type FunctionBinding struct {
	ID       int
	Name     string
	Instance function.Function
}

// Identifier returns the NAME_ID symbol of the binding.
func (b FunctionBinding) Identifier() string {
	return fmt.Sprintf("%s_%d", b.Name, b.ID)
}
