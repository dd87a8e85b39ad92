// Package formfield сопоставляет нестабильные имена полей формы с каноническими полями предложения.
package formfield

import "strings"

// RawInput - сырые поля отправки формы: ключи зависят от ревизии формы.
type RawInput map[string]string

// Resolve возвращает обрезанное значение первого ключа из списка с непустым значением.
// Порядок ключей задаёт приоритет; если ни один не подошёл, возвращается пустая строка.
func Resolve(raw RawInput, keys ...string) string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Clone возвращает независимую копию карты; nil превращается в пустую карту.
func (r RawInput) Clone() RawInput {
	out := make(RawInput, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// MergeMissing добавляет в карту значения из other, не перезаписывая существующие ключи.
func (r RawInput) MergeMissing(other RawInput) {
	for k, v := range other {
		if _, exists := r[k]; !exists {
			r[k] = v
		}
	}
}
