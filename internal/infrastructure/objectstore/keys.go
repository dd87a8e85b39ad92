// Package objectstore содержит реализации repository.ObjectStore.
package objectstore

import (
	"fmt"
	"path"
	"strings"
)

// CleanKey проверяет ключ объекта: относительный путь со слешами, без "..".
func CleanKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("objectstore: пустой ключ")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("objectstore: недопустимый ключ %q", key)
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", fmt.Errorf("objectstore: недопустимый ключ %q", key)
	}
	return cleaned, nil
}

// PublicURL склеивает базовый адрес раздачи и ключ объекта.
func PublicURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/blobs/" + key
}
