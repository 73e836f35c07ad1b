// Copyright 2022 Molecula Corp. All rights reserved.
package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/row"
	"github.com/featurebasedb/streamsql/types"
)

// castPlanExpression converts its operand to targetType
type castPlanExpression struct {
	lhs        planExpression
	targetType types.DataType
}

func newCastPlanExpression(lhs planExpression, targetType types.DataType) *castPlanExpression {
	return &castPlanExpression{
		lhs:        lhs,
		targetType: targetType,
	}
}

// castAllowed reports whether a value of type from can be cast to type to.
func castAllowed(from, to types.DataType) bool {
	if types.IsVoid(from) {
		return types.IsPrimitive(to)
	}
	switch to.(type) {
	case *types.DataTypeInteger, *types.DataTypeBigint, *types.DataTypeDouble:
		switch from.(type) {
		case *types.DataTypeInteger, *types.DataTypeBigint, *types.DataTypeDouble, *types.DataTypeString:
			return true
		}
	case *types.DataTypeString:
		return types.IsPrimitive(from)
	case *types.DataTypeBoolean:
		switch from.(type) {
		case *types.DataTypeBoolean, *types.DataTypeString:
			return true
		}
	}
	return false
}

func (n *castPlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	v, err := n.lhs.Evaluate(currentRow)
	if err != nil || v == nil {
		return nil, err
	}
	return castValue(v, n.targetType)
}

// castValue converts a non-null value to target.
func castValue(v interface{}, target types.DataType) (interface{}, error) {
	switch target.(type) {
	case *types.DataTypeInteger:
		switch vv := v.(type) {
		case int32:
			return vv, nil
		case int64:
			return int32(vv), nil
		case float64:
			return int32(truncateFloat(vv, math.MinInt32, math.MaxInt32)), nil
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(vv), 10, 32)
			if err != nil {
				return nil, streamsql.NewErrInvalidCast(vv, target.TypeDescription())
			}
			return int32(i), nil
		}

	case *types.DataTypeBigint:
		switch vv := v.(type) {
		case int32:
			return int64(vv), nil
		case int64:
			return vv, nil
		case float64:
			return truncateFloat(vv, math.MinInt64, math.MaxInt64), nil
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(vv), 10, 64)
			if err != nil {
				return nil, streamsql.NewErrInvalidCast(vv, target.TypeDescription())
			}
			return i, nil
		}

	case *types.DataTypeDouble:
		switch vv := v.(type) {
		case int32:
			return float64(vv), nil
		case int64:
			return float64(vv), nil
		case float64:
			return vv, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(vv), 64)
			if err != nil {
				return nil, streamsql.NewErrInvalidCast(vv, target.TypeDescription())
			}
			return f, nil
		}

	case *types.DataTypeString:
		s, err := formatPrimitive(v)
		if err != nil {
			return nil, err
		}
		return s, nil

	case *types.DataTypeBoolean:
		switch vv := v.(type) {
		case bool:
			return vv, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(vv)) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
			return nil, streamsql.NewErrInvalidCast(vv, target.TypeDescription())
		}
	}
	return nil, streamsql.NewErrInternalf("unhandled cast of '%T' to '%s'", v, target.TypeDescription())
}

// truncateFloat truncates toward zero, saturating at [lo, hi]. NaN is 0.
func truncateFloat(f float64, lo, hi int64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= float64(hi):
		return hi
	case f <= float64(lo):
		return lo
	}
	return int64(f)
}

// formatPrimitive renders the canonical text of a primitive value.
func formatPrimitive(v interface{}) (string, error) {
	switch vv := v.(type) {
	case string:
		return vv, nil
	case bool:
		return strconv.FormatBool(vv), nil
	case int32:
		return strconv.FormatInt(int64(vv), 10), nil
	case int64:
		return strconv.FormatInt(vv, 10), nil
	case float64:
		return strconv.FormatFloat(vv, 'g', -1, 64), nil
	}
	return "", streamsql.NewErrInternalf("unexpected primitive value type '%T'", v)
}

func (n *castPlanExpression) Type() types.DataType {
	return n.targetType
}

func (n *castPlanExpression) String() string {
	return fmt.Sprintf("cast(%s as %s)", n.lhs, n.targetType.TypeDescription())
}

func (n *castPlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["targetType"] = n.targetType.TypeDescription()
	result["lhs"] = n.lhs.Plan()
	return result
}

func (n *castPlanExpression) Children() []planExpression {
	return []planExpression{n.lhs}
}
