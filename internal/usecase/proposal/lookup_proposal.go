package proposal

import (
	"context"

	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
	"github.com/ignatzorin/proposal-intake/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-intake/internal/pkg/apperror"
)

type LookupProposalUseCase struct {
	store repository.ObjectStore
}

func NewLookupProposalUseCase(store repository.ObjectStore) *LookupProposalUseCase {
	return &LookupProposalUseCase{store: store}
}

// Execute возвращает публичный URL документа по коду (регистр не важен).
// Некорректный или неизвестный код даёт ErrProposalNotFound.
func (uc *LookupProposalUseCase) Execute(ctx context.Context, rawCode string) (string, error) {
	code, err := valueobject.ParseProposalCode(rawCode)
	if err != nil {
		return "", apperror.ErrProposalNotFound
	}

	obj, err := find(ctx, uc.store, code)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeStorage, "failed to look up proposal")
	}
	if obj == nil {
		return "", apperror.ErrProposalNotFound
	}
	return obj.URL, nil
}
