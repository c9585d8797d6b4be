package export

import (
	"bytes"
	"strings"
)

// WriteCSV renders t as comma separated text with one "\n" terminated line per row.
//
// A field containing a comma is wrapped in double quotes. Double quotes inside a field are
// written as they are, so a value holding both a comma and a quote does not read back
// intact. Downstream spreadsheets rely on this exact output, so it is kept.
func WriteCSV(t Table) []byte {
	var buf bytes.Buffer
	writeCSVLine(&buf, t.Headers)
	for _, row := range t.Rows {
		writeCSVLine(&buf, row)
	}
	return buf.Bytes()
}

func writeCSVLine(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if strings.Contains(field, ",") {
			buf.WriteByte('"')
			buf.WriteString(field)
			buf.WriteByte('"')
			continue
		}
		buf.WriteString(field)
	}
	buf.WriteByte('\n')
}
