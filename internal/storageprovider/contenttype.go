package storageprovider

import (
	"path"
)

var contentTypes = map[string]string{
	".json": "application/json",
	".lz4":  "application/x-lz4",
	".txt":  "text/plain; charset=utf-8",
	".xml":  "application/xml",
}

func contentType(name string) string {
	if t, ok := contentTypes[path.Ext(name)]; ok {
		return t
	}
	return "application/octet-stream"
}
