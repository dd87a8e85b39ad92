// Package forminput превращает тело или строку запроса отправки формы в карту сырых полей.
package forminput

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/ignatzorin/proposal-intake/internal/domain/formfield"
	"github.com/ignatzorin/proposal-intake/internal/pkg/apperror"
)

const (
	EncodingQuery     = "query"
	EncodingJSON      = "json"
	EncodingMultipart = "multipart"
	EncodingForm      = "form"
)

const (
	// ParseErrorKey и RawBodyKey заменяют поля, когда тело не удалось разобрать.
	ParseErrorKey = "_parse_error"
	RawBodyKey    = "_raw"
	// RawRequestKey - поле вебхука формы с ответами в виде JSON.
	RawRequestKey = "rawRequest"
)

const DefaultMaxBodyBytes int64 = 1 << 20

// Input - результат разбора запроса.
type Input struct {
	Fields      formfield.RawInput
	Encoding    string
	ParseFailed bool
}

type Decoder struct {
	maxBodyBytes int64
}

func NewDecoder(maxBodyBytes int64) *Decoder {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Decoder{maxBodyBytes: maxBodyBytes}
}

// Decode читает GET-параметры или тело POST.
// Ошибка возвращается только если тело нельзя прочитать; ошибки формата попадают в поля.
func (d *Decoder) Decode(w http.ResponseWriter, r *http.Request) (*Input, error) {
	if r.Method == http.MethodGet {
		fields, err := decodeURLEncoded(r.URL.RawQuery)
		if err != nil {
			return flagged(EncodingQuery, err, r.URL.RawQuery), nil
		}
		return &Input{Fields: fields, Encoding: EncodingQuery}, nil
	}

	body, err := d.readBody(w, r)
	if err != nil {
		return nil, err
	}

	encoding, params := classify(r.Header.Get("Content-Type"))
	var fields formfield.RawInput
	switch encoding {
	case EncodingJSON:
		if len(bytes.TrimSpace(body)) == 0 {
			fields = formfield.RawInput{}
			break
		}
		fields, err = FlattenJSON(body)
	case EncodingMultipart:
		fields, err = decodeMultipart(body, params["boundary"])
	default:
		fields, err = decodeURLEncoded(string(body))
	}
	if err != nil {
		return flagged(encoding, err, string(body)), nil
	}

	mergeRawRequest(fields)
	return &Input{Fields: fields, Encoding: encoding}, nil
}

func (d *Decoder) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, d.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.ErrBodyTooLarge
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "failed to read request body")
	}
	return body, nil
}

// classify определяет кодировку тела по Content-Type; всё неизвестное считается urlencoded.
func classify(contentType string) (string, map[string]string) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}

	switch {
	case mediaType == "application/json", mediaType == "text/json", strings.HasSuffix(mediaType, "+json"):
		return EncodingJSON, params
	case mediaType == "multipart/form-data":
		return EncodingMultipart, params
	default:
		return EncodingForm, params
	}
}

// decodeURLEncoded разбирает пары key=value; при повторе ключа побеждает последнее значение.
func decodeURLEncoded(raw string) (formfield.RawInput, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed form encoding: %w", err)
	}
	return lastValues(values), nil
}

// decodeMultipart берёт только текстовые поля, файлы пропускаются.
func decodeMultipart(body []byte, boundary string) (formfield.RawInput, error) {
	if boundary == "" {
		return nil, errors.New("multipart body without boundary")
	}

	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	fields := formfield.RawInput{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return fields, nil
		}
		if err != nil {
			return nil, fmt.Errorf("malformed multipart body: %w", err)
		}

		name := part.FormName()
		if name == "" || part.FileName() != "" {
			_ = part.Close()
			continue
		}

		value, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, fmt.Errorf("malformed multipart body: %w", err)
		}
		fields[name] = string(value)
	}
}

// mergeRawRequest добавляет ответы из rawRequest вебхука, не перезаписывая поля верхнего уровня.
func mergeRawRequest(fields formfield.RawInput) {
	raw := strings.TrimSpace(fields[RawRequestKey])
	if raw == "" {
		return
	}
	answers, err := FlattenJSON([]byte(raw))
	if err != nil {
		return
	}
	fields.MergeMissing(answers)
}

func flagged(encoding string, err error, raw string) *Input {
	return &Input{
		Fields: formfield.RawInput{
			ParseErrorKey: err.Error(),
			RawBodyKey:    raw,
		},
		Encoding:    encoding,
		ParseFailed: true,
	}
}

func lastValues(values url.Values) formfield.RawInput {
	out := make(formfield.RawInput, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		out[key] = vals[len(vals)-1]
	}
	return out
}
