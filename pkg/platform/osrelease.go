package platform

import (
	"bufio"
	"io"
	"strings"
)

// parseOSRelease extracts the ID, ID_LIKE and VERSION_ID fields from an
// os-release stream (os-release(5)). Missing fields come back empty.
func parseOSRelease(r io.Reader) (id string, idLike []string, versionID string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)

		switch key {
		case "ID":
			id = value
		case "ID_LIKE":
			idLike = strings.Fields(value)
		case "VERSION_ID":
			versionID = value
		}
	}
	return id, idLike, versionID
}
