package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"storeapi/internal/models"

	"gorm.io/gorm"
)

// MemoryTxManager is an in-memory implementation of TxManager. Transactions are
// serialised by a mutex and writes made before a failing step are discarded by
// working on a copy of the tables.
type MemoryTxManager struct {
	mu     sync.Mutex
	tables *memoryTables
}

type memoryTables struct {
	users  map[uint]models.User
	stores map[uint]models.Store
	items  map[uint]models.Item
	nextID map[string]uint
}

func newMemoryTables() *memoryTables {
	return &memoryTables{
		users:  make(map[uint]models.User),
		stores: make(map[uint]models.Store),
		items:  make(map[uint]models.Item),
		nextID: make(map[string]uint),
	}
}

func (t *memoryTables) clone() *memoryTables {
	c := newMemoryTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.stores {
		c.stores[k] = v
	}
	for k, v := range t.items {
		c.items[k] = v
	}
	for k, v := range t.nextID {
		c.nextID[k] = v
	}
	return c
}

func (t *memoryTables) id(table string) uint {
	t.nextID[table]++
	return t.nextID[table]
}

// NewMemoryTxManager creates a new instance of MemoryTxManager.
func NewMemoryTxManager() *MemoryTxManager {
	return &MemoryTxManager{
		tables: newMemoryTables(),
	}
}

// WithinTx runs fn against a snapshot and publishes the snapshot on success.
func (m *MemoryTxManager) WithinTx(ctx context.Context, fn func(r Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := m.tables.clone()
	if err := fn(Repositories{
		Users:  &memoryUserRepository{t: tx},
		Stores: &memoryStoreRepository{t: tx},
		Items:  &memoryItemRepository{t: tx},
	}); err != nil {
		return err
	}
	m.tables = tx
	return nil
}

type memoryUserRepository struct {
	t *memoryTables
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, id := range sortedKeys(r.t.users) {
		if u := r.t.users[id]; u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with username %s: %w", username, ErrNotFound)
}

func (r *memoryUserRepository) FindByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.t.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %d: %w", id, ErrNotFound)
	}
	return &u, nil
}

func (r *memoryUserRepository) Save(_ context.Context, user *models.User) error {
	for id, u := range r.t.users {
		if id != user.ID && u.Username == user.Username {
			return fmt.Errorf("failed to save user %s: %w", user.Username, gorm.ErrDuplicatedKey)
		}
	}
	if user.ID == 0 {
		user.ID = r.t.id("users")
	}
	r.t.users[user.ID] = *user
	return nil
}

type memoryStoreRepository struct {
	t *memoryTables
}

func (r *memoryStoreRepository) FindAll(_ context.Context) ([]models.Store, error) {
	stores := make([]models.Store, 0, len(r.t.stores))
	for _, id := range sortedKeys(r.t.stores) {
		stores = append(stores, r.t.stores[id])
	}
	return stores, nil
}

func (r *memoryStoreRepository) FindByName(_ context.Context, name string) (*models.Store, error) {
	for _, id := range sortedKeys(r.t.stores) {
		if s := r.t.stores[id]; s.Name == name {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("store with name %s: %w", name, ErrNotFound)
}

func (r *memoryStoreRepository) FindByID(_ context.Context, id uint) (*models.Store, error) {
	s, ok := r.t.stores[id]
	if !ok {
		return nil, fmt.Errorf("store with ID %d: %w", id, ErrNotFound)
	}
	return &s, nil
}

func (r *memoryStoreRepository) Save(_ context.Context, store *models.Store) error {
	for id, s := range r.t.stores {
		if id != store.ID && s.Name == store.Name {
			return fmt.Errorf("failed to save store %s: %w", store.Name, gorm.ErrDuplicatedKey)
		}
	}
	if store.ID == 0 {
		store.ID = r.t.id("stores")
	}
	r.t.stores[store.ID] = *store
	return nil
}

func (r *memoryStoreRepository) Delete(_ context.Context, store *models.Store) error {
	for _, it := range r.t.items {
		if it.StoreID == store.ID {
			return fmt.Errorf("failed to delete store %s: %w", store.Name, gorm.ErrForeignKeyViolated)
		}
	}
	delete(r.t.stores, store.ID)
	return nil
}

type memoryItemRepository struct {
	t *memoryTables
}

func (r *memoryItemRepository) FindAll(_ context.Context) ([]models.Item, error) {
	items := make([]models.Item, 0, len(r.t.items))
	for _, id := range sortedKeys(r.t.items) {
		items = append(items, r.t.items[id])
	}
	return items, nil
}

func (r *memoryItemRepository) FindByName(_ context.Context, name string) (*models.Item, error) {
	for _, id := range sortedKeys(r.t.items) {
		if it := r.t.items[id]; it.Name == name {
			return &it, nil
		}
	}
	return nil, fmt.Errorf("item with name %s: %w", name, ErrNotFound)
}

func (r *memoryItemRepository) FindByID(_ context.Context, id uint) (*models.Item, error) {
	it, ok := r.t.items[id]
	if !ok {
		return nil, fmt.Errorf("item with ID %d: %w", id, ErrNotFound)
	}
	return &it, nil
}

func (r *memoryItemRepository) FindByStoreID(_ context.Context, storeID uint) ([]models.Item, error) {
	var items []models.Item
	for _, id := range sortedKeys(r.t.items) {
		if it := r.t.items[id]; it.StoreID == storeID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *memoryItemRepository) CountByStoreID(ctx context.Context, storeID uint) (int64, error) {
	items, _ := r.FindByStoreID(ctx, storeID)
	return int64(len(items)), nil
}

func (r *memoryItemRepository) Save(_ context.Context, item *models.Item) error {
	if _, ok := r.t.stores[item.StoreID]; !ok {
		return fmt.Errorf("failed to save item %s: %w", item.Name, gorm.ErrForeignKeyViolated)
	}
	for id, it := range r.t.items {
		if id != item.ID && it.Name == item.Name {
			return fmt.Errorf("failed to save item %s: %w", item.Name, gorm.ErrDuplicatedKey)
		}
	}
	if item.ID == 0 {
		item.ID = r.t.id("items")
	}
	item.Price = models.RoundPrice(item.Price)
	r.t.items[item.ID] = *item
	return nil
}

func (r *memoryItemRepository) Delete(_ context.Context, item *models.Item) error {
	delete(r.t.items, item.ID)
	return nil
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
