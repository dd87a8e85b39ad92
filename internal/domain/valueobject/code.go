package valueobject

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/ignatzorin/proposal-intake/internal/pkg/apperror"
)

const (
	ProposalCodeLength = 6
	ProposalKeyPrefix  = "proposals/"

	proposalCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ProposalCode - короткий код, который агент может продиктовать клиенту.
type ProposalCode string

func NewProposalCode() (ProposalCode, error) {
	alphabetLen := big.NewInt(int64(len(proposalCodeAlphabet)))
	buf := make([]byte, ProposalCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("proposal code: не удалось получить случайное число: %w", err)
		}
		buf[i] = proposalCodeAlphabet[n.Int64()]
	}
	return ProposalCode(buf), nil
}

// ParseProposalCode приводит код к верхнему регистру и проверяет формат.
func ParseProposalCode(raw string) (ProposalCode, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != ProposalCodeLength {
		return "", apperror.New(apperror.ErrCodeBadRequest, "invalid proposal code")
	}
	for _, r := range code {
		if !strings.ContainsRune(proposalCodeAlphabet, r) {
			return "", apperror.New(apperror.ErrCodeBadRequest, "invalid proposal code")
		}
	}
	return ProposalCode(code), nil
}

func (c ProposalCode) String() string {
	return string(c)
}

// ObjectKey - ключ объекта в хранилище: proposals/<CODE>.json.
func (c ProposalCode) ObjectKey() string {
	return ProposalKeyPrefix + string(c) + ".json"
}

// ObjectPrefix - префикс для поиска объекта через List.
func (c ProposalCode) ObjectPrefix() string {
	return ProposalKeyPrefix + string(c)
}
