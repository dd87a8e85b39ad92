package proposal

import (
	"context"
	"errors"
	"strings"

	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
)

type mockObjectStore struct {
	objects  map[string][]byte
	putErr   error
	listErr  error
	putCalls int
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{objects: make(map[string][]byte)}
}

func (m *mockObjectStore) Put(ctx context.Context, key string, content []byte, opts repository.PutOptions) (string, error) {
	m.putCalls++
	if m.putErr != nil {
		return "", m.putErr
	}
	if !opts.Public {
		return "", errors.New("expected public object")
	}
	m.objects[key] = append([]byte(nil), content...)
	return "https://blobs.example.test/" + key, nil
}

func (m *mockObjectStore) List(ctx context.Context, prefix string) ([]repository.Object, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []repository.Object
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			result = append(result, repository.Object{Pathname: key, URL: "https://blobs.example.test/" + key})
		}
	}
	return result, nil
}
