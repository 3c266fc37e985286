package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"clinic-schedule-api/internal/model"
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// noteLine renders one audit entry: "[<RFC3339 UTC>] <role>: <text>".
func noteLine(at time.Time, role model.Role, text string) (string, error) {
	text = strings.TrimSpace(lineBreaks.Replace(text))
	if text == "" {
		return "", invalid("note text is required")
	}
	return fmt.Sprintf("[%s] %s: %s", at.UTC().Format(time.RFC3339), role, text), nil
}

func appendLine(notes *string, line string) string {
	if notes == nil || *notes == "" {
		return line
	}
	if strings.HasSuffix(*notes, "\n") {
		return *notes + line
	}
	return *notes + "\n" + line
}
