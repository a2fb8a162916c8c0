package flowmasters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// newID mints a short prefixed identifier, e.g. ENT-4F09A21.
func newID(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:7]
}

// buildUpdateQuery turns a JSON fields map into an UPDATE statement over the
// allowed columns only. allowed maps the JSON key to the column name. Returns
// the statement, ordered args (id last) and the number of columns set.
func buildUpdateQuery(table, idCol, id string, fields map[string]interface{}, allowed map[string]string) (string, []interface{}, int) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := allowed[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var setPairs []string
	var args []interface{}
	for _, k := range keys {
		args = append(args, fields[k])
		setPairs = append(setPairs, fmt.Sprintf("%s=$%d", allowed[k], len(args)))
	}
	if len(args) == 0 {
		return "", nil, 0
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s, updated_at=now() WHERE %s=$%d AND status <> 'Deleted'",
		table, strings.Join(setPairs, ", "), idCol, len(args))
	return query, args, len(setPairs)
}

// nullable maps "" to SQL NULL for optional text/date columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
