package forminput

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/ignatzorin/proposal-intake/internal/domain/formfield"
)

// MaxNestingDepth ограничивает вложенность JSON тела: глубже форма данных не присылает.
const MaxNestingDepth = 32

var (
	errNotObject = errors.New("JSON body is not an object")
	errTooDeep   = fmt.Errorf("JSON nesting deeper than %d levels", MaxNestingDepth)
)

// FlattenJSON раскладывает JSON-объект в плоскую карту полей.
// Вложенные значения получают ключи вида key[0] и key[sub], как в формах.
// Тело глубже MaxNestingDepth уровней отклоняется.
func FlattenJSON(body []byte) (formfield.RawInput, error) {
	if !gjson.ValidBytes(body) {
		return nil, describeInvalidJSON(body)
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, errNotObject
	}

	out := formfield.RawInput{}
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		err = flattenValue(out, key.String(), value, 1)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// flattenValue обходит значение на глубине depth (1 для членов корневого объекта).
func flattenValue(out formfield.RawInput, key string, value gjson.Result, depth int) error {
	if (value.IsObject() || value.IsArray()) && depth >= MaxNestingDepth {
		return errTooDeep
	}

	var err error
	switch {
	case value.IsObject():
		empty := true
		value.ForEach(func(sub, member gjson.Result) bool {
			empty = false
			err = flattenValue(out, key+"["+sub.String()+"]", member, depth+1)
			return err == nil
		})
		if empty {
			out[key] = ""
		}
	case value.IsArray():
		empty := true
		i := 0
		value.ForEach(func(_, item gjson.Result) bool {
			empty = false
			err = flattenValue(out, key+"["+strconv.Itoa(i)+"]", item, depth+1)
			i++
			return err == nil
		})
		if empty {
			out[key] = ""
		}
	case value.Type == gjson.Null:
		out[key] = ""
	case value.Type == gjson.String:
		out[key] = value.Str
	default:
		out[key] = value.Raw
	}
	return err
}

// describeInvalidJSON возвращает причину ошибки разбора от encoding/json.
func describeInvalidJSON(body []byte) error {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return err
	}
	return errors.New("invalid JSON")
}
