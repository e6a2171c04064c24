package account

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dalfonso89/account-exchange-service/internal/money"
)

// Repository finds accounts by id or number
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (Account, bool)
	FindByNumber(ctx context.Context, number string) (Account, bool)
}

// InMemoryRepository keeps accounts in process memory
type InMemoryRepository struct {
	mutex    sync.RWMutex
	byID     map[uuid.UUID]Account
	byNumber map[string]uuid.UUID
}

func NewInMemoryRepository(accounts ...Account) *InMemoryRepository {
	repository := &InMemoryRepository{
		byID:     make(map[uuid.UUID]Account, len(accounts)),
		byNumber: make(map[string]uuid.UUID, len(accounts)),
	}
	for _, account := range accounts {
		repository.Save(account)
	}
	return repository
}

// NewSeededRepository returns a repository holding the demo accounts
func NewSeededRepository() *InMemoryRepository {
	return NewInMemoryRepository(
		Account{
			ID:      uuid.MustParse("fa07c538-8ce4-4ee3-8365-0a7d1a2c7d8a"),
			Number:  "65 1090 1665 0000 0001 0373 7343",
			Balance: money.MustParse("123.45", "PLN"),
		},
		Account{
			ID:      uuid.MustParse("78743539-7d2b-4f1e-9a4b-0b2b8f3e0c51"),
			Number:  "75 1240 2034 1111 0000 0306 8582",
			Balance: money.MustParse("456.78", "EUR"),
		},
	)
}

// Save inserts or replaces an account
func (repository *InMemoryRepository) Save(account Account) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	if previous, found := repository.byID[account.ID]; found {
		delete(repository.byNumber, NormalizeNumber(previous.Number))
	}
	repository.byID[account.ID] = account
	repository.byNumber[NormalizeNumber(account.Number)] = account.ID
}

func (repository *InMemoryRepository) FindByID(_ context.Context, id uuid.UUID) (Account, bool) {
	repository.mutex.RLock()
	defer repository.mutex.RUnlock()

	account, found := repository.byID[id]
	return account, found
}

func (repository *InMemoryRepository) FindByNumber(_ context.Context, number string) (Account, bool) {
	repository.mutex.RLock()
	defer repository.mutex.RUnlock()

	id, found := repository.byNumber[NormalizeNumber(number)]
	if !found {
		return Account{}, false
	}
	return repository.byID[id], true
}
