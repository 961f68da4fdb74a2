package pagedriver

import (
	"encoding/base64"
	"mime"
	"os"
	"path/filepath"
	"sort"
)

func readFileText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// normalizeFilePayloads converts payloads to the wire shape, base64-encoding
// buffers. Payloads with an empty Buffer are read from Name as a path.
func normalizeFilePayloads(files []FilePayload) ([]interface{}, error) {
	out := make([]interface{}, 0, len(files))
	for _, file := range files {
		buffer := file.Buffer
		name := file.Name
		if buffer == nil {
			data, err := os.ReadFile(file.Name)
			if err != nil {
				return nil, err
			}
			buffer = data
			name = filepath.Base(file.Name)
		}
		mimeType := file.MimeType
		if mimeType == "" {
			mimeType = mime.TypeByExtension(filepath.Ext(name))
			if mimeType == "" {
				mimeType = "application/octet-stream"
			}
		}
		out = append(out, map[string]interface{}{
			"name":     name,
			"mimeType": mimeType,
			"buffer":   base64.StdEncoding.EncodeToString(buffer),
		})
	}
	return out, nil
}

// serializeHeaders converts a header map to the name/value list the wire
// expects.
func serializeHeaders(headers map[string]string) []interface{} {
	out := make([]interface{}, 0, len(headers))
	for _, name := range sortedStringKeys(headers) {
		out = append(out, map[string]interface{}{"name": name, "value": headers[name]})
	}
	return out
}

func parseHeaders(list interface{}) map[string]string {
	headers := make(map[string]string)
	entries, _ := list.([]interface{})
	for _, entry := range entries {
		pair, _ := entry.(map[string]interface{})
		name, _ := pair["name"].(string)
		value, _ := pair["value"].(string)
		if name != "" {
			headers[name] = value
		}
	}
	return headers
}

func screenshotTypeFromPath(path string) string {
	switch filepath.Ext(path) {
	case ".jpg", ".jpeg":
		return "jpeg"
	default:
		return "png"
	}
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
