package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

var forbidden = []string{"DROP", "DELETE", "UPDATE", "INSERT", "CREATE", "ALTER", "TRUNCATE", "MERGE", "GRANT"}

var forbiddenRe = regexp.MustCompile(`\b(` + strings.Join(forbidden, "|") + `)\b`)

// Validate проверяет SQL-запрос на наличие запрещённых конструкций.
// Каталог содержит только запросы на чтение.
func Validate(sql string) error {
	if strings.TrimSpace(sql) == "" {
		return fmt.Errorf("query must not be empty")
	}
	if m := forbiddenRe.FindString(strings.ToUpper(sql)); m != "" {
		return fmt.Errorf("forbidden operation: %s", m)
	}
	return nil
}
