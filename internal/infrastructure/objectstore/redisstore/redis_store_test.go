package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
	"github.com/ignatzorin/proposal-intake/internal/pkg/apperror"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "https://intake.example.com"), mr
}

func TestStore_PutGet(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	content := []byte("{\n  \"how_many\": \"Joint\"\n}\n")

	url, err := store.Put(ctx, "proposals/Q1W2E3.json", content, repository.PutOptions{
		Public:      true,
		ContentType: "application/json; charset=utf-8",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://intake.example.com/blobs/proposals/Q1W2E3.json", url)
	assert.True(t, mr.Exists("blob:proposals/Q1W2E3.json"))

	got, contentType, err := store.Get(ctx, "proposals/Q1W2E3.json")
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "application/json; charset=utf-8", contentType)
}

func TestStore_GetPrivateOrMissing(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "proposals/PRIV01.json", []byte("{}"), repository.PutOptions{Public: false})
	require.NoError(t, err)

	_, _, err = store.Get(ctx, "proposals/PRIV01.json")
	assert.True(t, apperror.IsNotFound(err))

	_, _, err = store.Get(ctx, "proposals/NONE00.json")
	assert.True(t, apperror.IsNotFound(err))
}

func TestStore_ListByPrefix(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	for _, key := range []string{"proposals/AAA111.json", "proposals/AAA222.json", "proposals/BBB111.json"} {
		_, err := store.Put(ctx, key, []byte("{}"), repository.PutOptions{Public: true})
		require.NoError(t, err)
	}

	objects, err := store.List(ctx, "proposals/AAA")
	require.NoError(t, err)

	var names []string
	for _, o := range objects {
		names = append(names, o.Pathname)
	}
	assert.ElementsMatch(t, []string{"proposals/AAA111.json", "proposals/AAA222.json"}, names)
}

func TestStore_ListEscapesGlob(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	_, err := store.Put(ctx, "proposals/ABC.json", []byte("{}"), repository.PutOptions{Public: true})
	require.NoError(t, err)

	objects, err := store.List(ctx, "proposals/*")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestStore_Ping(t *testing.T) {
	store, mr := setupStore(t)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("://nope")
	assert.Error(t, err)
}
