package import_feature

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Date layouts accepted in date columns, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
}

// ParsedRow is the typed candidate record for one input row. Values hold
// string, float64, or time.Time depending on the column type; columns the
// row did not provide are absent.
type ParsedRow struct {
	Index  int
	Values map[string]interface{}
}

// Has reports whether the row provided a value for the column.
func (r ParsedRow) Has(name string) bool {
	_, ok := r.Values[name]
	return ok
}

func (r ParsedRow) String(name string) (string, bool) {
	v, ok := r.Values[name].(string)
	return v, ok
}

func (r ParsedRow) Number(name string) (float64, bool) {
	v, ok := r.Values[name].(float64)
	return v, ok
}

func (r ParsedRow) Date(name string) (time.Time, bool) {
	v, ok := r.Values[name].(time.Time)
	return v, ok
}

// ParseRow validates one raw row against the template and coerces each cell
// to its column type. It is pure: no side effects, no dependency on other
// rows. All failures for the row are returned together.
//
// partial relaxes required-field checks for incremental completion, except
// for key columns, which are always needed to resolve the row.
func ParseRow(raw RawRow, tmpl *ImportTemplate, partial bool) (ParsedRow, []*ImportError) {
	row := ParsedRow{Index: raw.Index, Values: make(map[string]interface{}, len(tmpl.Columns))}
	var errs []*ImportError

	for _, col := range tmpl.Columns {
		value, present := raw.Cells[col.Name]
		value = strings.TrimSpace(value)

		if !present || value == "" {
			if col.Required && (!partial || col.Key) {
				errs = append(errs, &ImportError{
					Row:      raw.Index,
					Column:   col.Name,
					Category: CategoryMissingRequired,
					Message:  fmt.Sprintf("required column %q is empty", col.Name),
				})
			}
			continue
		}

		parsed, err := coerce(value, col, raw.Index)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		row.Values[col.Name] = parsed
	}

	// Cells under unrecognized headers are ignored for forward-compatible
	// template evolution.

	return row, errs
}

func coerce(value string, col Column, rowIndex int) (interface{}, *ImportError) {
	switch col.Type {
	case ColumnText:
		return value, nil

	case ColumnNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, &ImportError{
				Row:      rowIndex,
				Column:   col.Name,
				Category: CategoryInvalidType,
				Message:  fmt.Sprintf("%q is not a number", value),
			}
		}
		return n, nil

	case ColumnDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
		}
		return nil, &ImportError{
			Row:      rowIndex,
			Column:   col.Name,
			Category: CategoryInvalidType,
			Message:  fmt.Sprintf("%q is not a recognized date", value),
		}

	case ColumnEmail:
		if !emailPattern.MatchString(value) {
			return nil, &ImportError{
				Row:      rowIndex,
				Column:   col.Name,
				Category: CategoryInvalidType,
				Message:  fmt.Sprintf("%q is not a valid email address", value),
			}
		}
		return strings.ToLower(value), nil

	case ColumnSelect:
		lower := strings.ToLower(value)
		for _, allowed := range col.Allowed {
			if lower == allowed {
				return lower, nil
			}
		}
		return nil, &ImportError{
			Row:      rowIndex,
			Column:   col.Name,
			Category: CategoryInvalidEnumValue,
			Message:  fmt.Sprintf("%q is not one of: %s", value, strings.Join(col.Allowed, ", ")),
		}

	default:
		return value, nil
	}
}
