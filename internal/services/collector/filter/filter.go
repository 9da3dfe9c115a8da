// Package filter translates AIP-160 filter expressions over session records
// into parameterized SQL conditions.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/louisbranch/aurora-runner/internal/services/collector/storage"
)

// SessionRecordDeclarations returns the field declarations for record filtering.
func SessionRecordDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("run_id", filtering.TypeString),
		filtering.DeclareIdent("status", filtering.TypeString),
		filtering.DeclareIdent("difficulty_id", filtering.TypeString),
		filtering.DeclareIdent("score", filtering.TypeInt),
		filtering.DeclareIdent("distance", filtering.TypeInt),
		filtering.DeclareIdent("level", filtering.TypeInt),
		filtering.DeclareIdent("ended_at", filtering.TypeTimestamp),
		filtering.DeclareIdent("received_at", filtering.TypeTimestamp),
	)
}

type column struct {
	name      string
	timestamp bool
}

// fieldMapping maps filter field names to SQL columns.
var fieldMapping = map[string]column{
	"run_id":        {name: "run_id"},
	"status":        {name: "status"},
	"difficulty_id": {name: "difficulty_id"},
	"score":         {name: "score"},
	"distance":      {name: "distance"},
	"level":         {name: "level"},
	"ended_at":      {name: "ended_at", timestamp: true},
	"received_at":   {name: "received_at", timestamp: true},
}

// ParseSessionRecordFilter parses filterStr and returns a SQL condition.
// An empty filter yields an empty condition.
func ParseSessionRecordFilter(filterStr string) (storage.Condition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return storage.Condition{}, nil
	}

	decls, err := SessionRecordDeclarations()
	if err != nil {
		return storage.Condition{}, fmt.Errorf("create declarations: %w", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return storage.Condition{}, fmt.Errorf("parse filter: %w", err)
	}

	return translateExpr(filter.CheckedExpr.Expr)
}

func translateExpr(e *expr.Expr) (storage.Condition, error) {
	if e == nil {
		return storage.Condition{}, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return translateCall(kind.CallExpr)
	default:
		return storage.Condition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func translateCall(call *expr.Expr_Call) (storage.Condition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return translateJoin(call.Args, "AND")
	case "_||_", "OR":
		return translateJoin(call.Args, "OR")
	case "NOT":
		return translateNot(call.Args)
	case "_==_", "=":
		return translateComparison(call.Args, "=")
	case "_!=_", "!=":
		return translateComparison(call.Args, "!=")
	case "_<_", "<":
		return translateComparison(call.Args, "<")
	case "_<=_", "<=":
		return translateComparison(call.Args, "<=")
	case "_>_", ">":
		return translateComparison(call.Args, ">")
	case "_>=_", ">=":
		return translateComparison(call.Args, ">=")
	default:
		return storage.Condition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func translateJoin(args []*expr.Expr, op string) (storage.Condition, error) {
	if len(args) != 2 {
		return storage.Condition{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	left, err := translateExpr(args[0])
	if err != nil {
		return storage.Condition{}, err
	}
	right, err := translateExpr(args[1])
	if err != nil {
		return storage.Condition{}, err
	}

	params := make([]any, 0, len(left.Params)+len(right.Params))
	params = append(params, left.Params...)
	params = append(params, right.Params...)
	return storage.Condition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: params,
	}, nil
}

func translateNot(args []*expr.Expr) (storage.Condition, error) {
	if len(args) != 1 {
		return storage.Condition{}, fmt.Errorf("NOT requires 1 argument")
	}
	inner, err := translateExpr(args[0])
	if err != nil {
		return storage.Condition{}, err
	}
	return storage.Condition{
		Clause: fmt.Sprintf("(NOT %s)", inner.Clause),
		Params: inner.Params,
	}, nil
}

func translateComparison(args []*expr.Expr, op string) (storage.Condition, error) {
	if len(args) != 2 {
		return storage.Condition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return storage.Condition{}, err
	}

	col, ok := fieldMapping[field]
	if !ok {
		return storage.Condition{}, fmt.Errorf("unknown field: %s", field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return storage.Condition{}, err
	}
	if col.timestamp {
		ts, ok := value.(time.Time)
		if !ok {
			return storage.Condition{}, fmt.Errorf("field %s requires a timestamp value", field)
		}
		// Stored as epoch milliseconds.
		value = ts.UTC().UnixMilli()
	}

	return storage.Condition{
		Clause: fmt.Sprintf("%s %s ?", col.name, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			return extractTimestampValue(kind.CallExpr.Args[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

func extractTimestampValue(e *expr.Expr) (time.Time, error) {
	if e == nil {
		return time.Time{}, fmt.Errorf("nil timestamp argument")
	}

	constExpr, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp argument must be a constant string")
	}
	strVal, ok := constExpr.ConstExpr.ConstantKind.(*expr.Constant_StringValue)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp argument must be a string")
	}
	ts, err := time.Parse(time.RFC3339Nano, strVal.StringValue)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp format: %s", strVal.StringValue)
	}
	return ts, nil
}
