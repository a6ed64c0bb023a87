package stormsql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/pkg/errors"
	"github.com/xwb1989/sqlparser"
)

// ErrUnsupported is returned for valid SQL that cannot be expressed as a storm query.
var ErrUnsupported = errors.New("unsupported")

// A SelectClause contains all the parsed SQL data.
// Column names are translated to Go field names (created_at => CreatedAt).
type SelectClause struct {
	// SelectedFields are the selected columns as written in the query, empty for `*`.
	SelectedFields  []string
	Count           bool
	Tablename       string
	Matcher         q.Matcher
	Skip            int
	Limit           int
	OrderBy         []string
	OrderByReversed bool
}

// ParseSelect parses the given SELECT statement.
func ParseSelect(sql string) (*SelectClause, error) {
	stmt, err := sqlparser.Parse(strings.TrimSuffix(strings.TrimSpace(sql), ";"))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse SQL")
	}

	s, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, errors.New("not a select statement")
	}

	var sc SelectClause

	// SELECT * ...
	// SELECT item_id, updated_at ...
	// SELECT count(*) ...
	for _, se := range s.SelectExprs {
		switch v := se.(type) {
		case *sqlparser.StarExpr:
			sc.SelectedFields = []string{}
		case *sqlparser.AliasedExpr:
			switch v := v.Expr.(type) {
			case *sqlparser.ColName:
				sc.SelectedFields = append(sc.SelectedFields, v.Name.String())
			case *sqlparser.FuncExpr:
				if v.Name.Lowered() != "count" {
					return nil, errors.Wrapf(ErrUnsupported, "function %s", v.Name.String())
				}
				sc.SelectedFields = []string{}
				sc.Count = true
			default:
				return nil, errors.Wrap(ErrUnsupported, "select expression")
			}
		default:
			return nil, errors.Wrap(ErrUnsupported, "select expression")
		}
	}

	// FROM items
	if len(s.From) != 1 {
		return nil, errors.Wrap(ErrUnsupported, "joins")
	}
	table, ok := s.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return nil, errors.Wrap(ErrUnsupported, "table expression")
	}
	sc.Tablename = sqlparser.GetTableName(table.Expr).String()

	// WHERE
	sc.Matcher = q.And()
	if s.Where != nil {
		if sc.Matcher, err = parseWhereExpr(s.Where.Expr); err != nil {
			return nil, err
		}
	}

	// LIMIT 5
	// LIMIT 2,5
	if s.Limit != nil {
		if s.Limit.Offset != nil {
			if sc.Skip, err = parseInt(s.Limit.Offset); err != nil {
				return nil, err
			}
		}
		if sc.Limit, err = parseInt(s.Limit.Rowcount); err != nil {
			return nil, err
		}
	}

	// ORDER BY z_index
	// ORDER BY updated_at DESC
	// ORDER BY updated_at DESC, created_at ASC     => All will be DESC due to storm limitation
	for _, ob := range s.OrderBy {
		col, ok := ob.Expr.(*sqlparser.ColName)
		if !ok {
			return nil, errors.Wrap(ErrUnsupported, "order by expression")
		}
		if ob.Direction == sqlparser.DescScr {
			sc.OrderByReversed = true
		}
		sc.OrderBy = append(sc.OrderBy, Field(col.Name.String()))
	}

	return &sc, nil
}

// Query builds the storm query of the clause.
func (sc *SelectClause) Query(node storm.Node) storm.Query {
	query := node.Select(sc.Matcher)
	if sc.Skip > 0 {
		query.Skip(sc.Skip)
	}
	if sc.Limit > 0 {
		query.Limit(sc.Limit)
	}
	if len(sc.OrderBy) > 0 {
		query.OrderBy(sc.OrderBy...)
		if sc.OrderByReversed {
			query.Reverse()
		}
	}
	return query
}

// Field returns the Go field name of a snake_case column.
func Field(column string) string {
	var name strings.Builder
	for _, part := range strings.Split(column, "_") {
		switch lower := strings.ToLower(part); lower {
		case "":
		case "id", "url":
			name.WriteString(strings.ToUpper(lower))
		default:
			name.WriteString(strings.ToUpper(lower[:1]) + lower[1:])
		}
	}
	return name.String()
}

func parseWhereExpr(expr sqlparser.Expr) (q.Matcher, error) {
	switch v := expr.(type) {
	//
	//
	//
	case *sqlparser.ComparisonExpr:
		col, ok := v.Left.(*sqlparser.ColName)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupported, "left operand %s", sqlparser.String(v.Left))
		}
		field := Field(col.Name.String())

		value, err := parseValue(v.Right)
		if err != nil {
			return nil, err
		}

		switch v.Operator {
		case sqlparser.EqualStr:
			return q.Eq(field, value), nil
		case sqlparser.NotEqualStr:
			return q.Not(q.Eq(field, value)), nil
		case sqlparser.GreaterThanStr:
			return q.Gt(field, value), nil
		case sqlparser.GreaterEqualStr:
			return q.Gte(field, value), nil
		case sqlparser.LessThanStr:
			return q.Lt(field, value), nil
		case sqlparser.LessEqualStr:
			return q.Lte(field, value), nil
		case sqlparser.InStr:
			return q.In(field, value), nil
		case sqlparser.LikeStr:
			return q.Re(field, like(fmt.Sprint(value))), nil
		}
		return nil, errors.Wrapf(ErrUnsupported, "operator %s", v.Operator)
		//
		//
		//
	case *sqlparser.IsExpr:
		col, ok := v.Expr.(*sqlparser.ColName)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupported, "operand %s", sqlparser.String(v.Expr))
		}

		switch v.Operator {
		case sqlparser.IsNullStr:
			return q.Eq(Field(col.Name.String()), nil), nil
		case sqlparser.IsNotNullStr:
			return q.Not(q.Eq(Field(col.Name.String()), nil)), nil
		}
		return nil, errors.Wrapf(ErrUnsupported, "operator %s", v.Operator)
		//
		//
		//
	case *sqlparser.AndExpr:
		left, err := parseWhereExpr(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := parseWhereExpr(v.Right)
		if err != nil {
			return nil, err
		}
		return q.And(left, right), nil
		//
		//
		//
	case *sqlparser.OrExpr:
		left, err := parseWhereExpr(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := parseWhereExpr(v.Right)
		if err != nil {
			return nil, err
		}
		return q.Or(left, right), nil
		//
		//
		//
	case *sqlparser.NotExpr:
		m, err := parseWhereExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return q.Not(m), nil
	case *sqlparser.ParenExpr:
		return parseWhereExpr(v.Expr)
	}

	return nil, errors.Wrapf(ErrUnsupported, "where expression %s", sqlparser.String(expr))
}

func parseValue(expr sqlparser.Expr) (any, error) {
	switch v := expr.(type) {
	case sqlparser.BoolVal:
		return bool(v), nil
	case *sqlparser.NullVal:
		return nil, nil
	case sqlparser.ValTuple:
		var tuple []any
		for _, t := range v {
			value, err := parseValue(t)
			if err != nil {
				return nil, err
			}
			tuple = append(tuple, value)
		}
		return tuple, nil
	case *sqlparser.SQLVal:
		return parseSQLVal(v)
	}
	return nil, errors.Wrapf(ErrUnsupported, "value %s", sqlparser.String(expr))
}

func parseSQLVal(v *sqlparser.SQLVal) (any, error) {
	switch v.Type {
	case sqlparser.StrVal:
		s := string(v.Val)

		// Dates are stored as time.Time, except the YYYY-MM-DD day of snapshots and menus.
		if len(s) > len("2006-01-02") {
			if t, err := dateparse.ParseAny(s); err == nil {
				return t.UTC(), nil
			}
		}
		return s, nil
	case sqlparser.IntVal:
		return strconv.Atoi(string(v.Val))
	case sqlparser.FloatVal:
		return strconv.ParseFloat(string(v.Val), 64)
	case sqlparser.HexNum:
		hex := strings.TrimPrefix(strings.ToLower(string(v.Val)), "0x")
		return strconv.ParseInt(hex, 16, 64)
	case sqlparser.HexVal:
		return v.HexDecode()
	case sqlparser.BitVal:
		return len(v.Val) > 0 && v.Val[0] == '1', nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "value %s", sqlparser.String(v))
}

func parseInt(expr sqlparser.Expr) (int, error) {
	v, ok := expr.(*sqlparser.SQLVal)
	if !ok || v.Type != sqlparser.IntVal {
		return 0, errors.Wrapf(ErrUnsupported, "limit %s", sqlparser.String(expr))
	}
	return strconv.Atoi(string(v.Val))
}

// like converts a LIKE pattern into an anchored regexp.
func like(pattern string) string {
	var re strings.Builder
	re.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			re.WriteString(".*")
		case '_':
			re.WriteString(".")
		case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			re.WriteRune('\\')
			re.WriteRune(r)
		default:
			re.WriteRune(r)
		}
	}
	re.WriteString("$")
	return re.String()
}
