package proposal

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ignatzorin/proposal-intake/internal/domain/entity"
	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
	"github.com/ignatzorin/proposal-intake/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-intake/internal/pkg/apperror"
)

const (
	jsonContentType = "application/json; charset=utf-8"
	maxCodeAttempts = 5
)

var errCodeTaken = errors.New("proposal code already in use")

type StoreProposalOutput struct {
	Code valueobject.ProposalCode
	URL  string
}

type StoreProposalUseCase struct {
	store   repository.ObjectStore
	newCode func() (valueobject.ProposalCode, error)
}

func NewStoreProposalUseCase(store repository.ObjectStore) *StoreProposalUseCase {
	return &StoreProposalUseCase{store: store, newCode: valueobject.NewProposalCode}
}

// Execute сохраняет документ под новым кодом и возвращает публичный URL объекта.
func (uc *StoreProposalUseCase) Execute(ctx context.Context, p *entity.Proposal) (*StoreProposalOutput, error) {
	content, err := Encode(p)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to encode proposal")
	}

	code, err := uc.freeCode(ctx)
	if err != nil {
		return nil, err
	}

	url, err := uc.store.Put(ctx, code.ObjectKey(), content, repository.PutOptions{
		Public:      true,
		ContentType: jsonContentType,
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "failed to store proposal")
	}

	return &StoreProposalOutput{Code: code, URL: url}, nil
}

// freeCode генерирует код, которого ещё нет в хранилище.
func (uc *StoreProposalUseCase) freeCode(ctx context.Context) (valueobject.ProposalCode, error) {
	var code valueobject.ProposalCode
	backoff := retry.WithMaxRetries(maxCodeAttempts-1, retry.NewConstant(time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		candidate, err := uc.newCode()
		if err != nil {
			return err
		}
		taken, err := exists(ctx, uc.store, candidate)
		if err != nil {
			return err
		}
		if taken {
			return retry.RetryableError(errCodeTaken)
		}
		code = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, errCodeTaken) {
			return "", apperror.Wrap(err, apperror.ErrCodeInternal, "no free proposal code")
		}
		return "", apperror.Wrap(err, apperror.ErrCodeStorage, "failed to reserve proposal code")
	}
	return code, nil
}

// find ищет объект с точным совпадением ключа среди результатов поиска по префиксу.
func find(ctx context.Context, store repository.ObjectStore, code valueobject.ProposalCode) (*repository.Object, error) {
	objects, err := store.List(ctx, code.ObjectPrefix())
	if err != nil {
		return nil, err
	}
	key := code.ObjectKey()
	for i := range objects {
		if objects[i].Pathname == key {
			return &objects[i], nil
		}
	}
	return nil, nil
}

func exists(ctx context.Context, store repository.ObjectStore, code valueobject.ProposalCode) (bool, error) {
	obj, err := find(ctx, store, code)
	return obj != nil, err
}
