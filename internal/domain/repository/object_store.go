package repository

import "context"

// Object - элемент результата List: путь внутри хранилища и публичный URL.
type Object struct {
	Pathname string `json:"pathname"`
	URL      string `json:"url"`
}

type PutOptions struct {
	Public      bool
	ContentType string
}

// ObjectStore - внешнее key/value хранилище документов с публичными ссылками.
// Обработчики заявок используют только Put и List.
type ObjectStore interface {
	Put(ctx context.Context, key string, content []byte, opts PutOptions) (string, error)
	List(ctx context.Context, prefix string) ([]Object, error)
}

// ObjectReader реализуют локальные бэкенды, которые сами раздают публичные объекты.
type ObjectReader interface {
	Get(ctx context.Context, key string) (content []byte, contentType string, err error)
}

// Pinger используется health check'ом.
type Pinger interface {
	Ping(ctx context.Context) error
}
