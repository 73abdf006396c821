package database

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotConnected is returned when an operation needs a live connection
var ErrNotConnected = errors.New("database not connected")

// DataManagerOptions contains configuration for a DataManager
type DataManagerOptions struct {
	MaxCacheSize int
}

// CacheManager is an LRU cache shared across DataManagers
type CacheManager struct {
	cache     map[string]*list.Element
	cacheList *list.List
	mu        sync.Mutex
}

// cacheEntry holds a cached value with its key
type cacheEntry struct {
	key   string
	value interface{}
}

// NewCacheManager creates an empty cache
func NewCacheManager() *CacheManager {
	return &CacheManager{
		cache:     make(map[string]*list.Element),
		cacheList: list.New(),
	}
}

func (c *CacheManager) get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	c.cacheList.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value, true
}

// put stores value under key and evicts the least recently used entry past maxSize
func (c *CacheManager) put(key string, value interface{}, maxSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{key: key, value: value}
	if elem, ok := c.cache[key]; ok {
		elem.Value = entry
		c.cacheList.MoveToFront(elem)
		return
	}
	c.cache[key] = c.cacheList.PushFront(entry)

	if maxSize > 0 && c.cacheList.Len() > maxSize {
		oldest := c.cacheList.Back()
		if oldest != nil {
			delete(c.cache, oldest.Value.(*cacheEntry).key)
			c.cacheList.Remove(oldest)
		}
	}
}

func (c *CacheManager) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		c.cacheList.Remove(elem)
		delete(c.cache, key)
	}
}

func (c *CacheManager) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*list.Element)
	c.cacheList = list.New()
}

func (c *CacheManager) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cacheList.Len()
}

// globalCacheManager is shared across all DataManager instances
var globalCacheManager = NewCacheManager()

// GlobalLevelsDM stores member XP documents
var GlobalLevelsDM *DataManager[models.LevelDocument]

// InitGlobalDataManagers initializes shared DataManager instances
func InitGlobalDataManagers(db *Database) {
	GlobalLevelsDM = NewDataManager[models.LevelDocument]("levels", db)
}

// DataManager provides cached access to a MongoDB collection
type DataManager[T any] struct {
	name       string
	dbInstance *Database
	cache      *CacheManager
	options    DataManagerOptions
}

// DefaultDataManagerOptions returns default options for DataManager
func DefaultDataManagerOptions() DataManagerOptions {
	return DataManagerOptions{
		MaxCacheSize: 1000,
	}
}

// NewDataManager creates a new DataManager for a collection
func NewDataManager[T any](collectionName string, db *Database, opts ...DataManagerOptions) *DataManager[T] {
	dmOptions := DefaultDataManagerOptions()
	if len(opts) > 0 {
		dmOptions = opts[0]
	}

	return &DataManager[T]{
		name:       collectionName,
		dbInstance: db,
		cache:      globalCacheManager,
		options:    dmOptions,
	}
}

// collection resolves the collection lazily so managers created before the
// first successful connection start working once it is up
func (dm *DataManager[T]) collection() (*mongo.Collection, error) {
	if !dm.dbInstance.Connected() {
		return nil, ErrNotConnected
	}
	col := dm.dbInstance.GetCollection(dm.name)
	if col == nil {
		return nil, ErrNotConnected
	}
	return col, nil
}

// generateCacheKey creates a unique, deterministic key from a query
func (dm *DataManager[T]) generateCacheKey(query bson.M) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, query[k]))
	}

	return fmt.Sprintf("%s:{%s}", dm.name, strings.Join(parts, ","))
}

// Get retrieves a document from cache or database. A missing document is (nil, nil).
func (dm *DataManager[T]) Get(ctx context.Context, query bson.M) (*T, error) {
	cacheKey := dm.generateCacheKey(query)
	if v, ok := dm.cache.get(cacheKey); ok {
		return v.(*T), nil
	}

	col, err := dm.collection()
	if err != nil {
		return nil, err
	}

	var result T
	err = col.FindOne(ctx, query).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		logger.Warn(fmt.Sprintf("Fallo al leer de la DB (%s): %v", dm.name, err), "DataManager")
		return nil, err
	}

	dm.cache.put(cacheKey, &result, dm.options.MaxCacheSize)
	return &result, nil
}

// Find returns the documents matching query sorted by sortField descending
func (dm *DataManager[T]) Find(ctx context.Context, query bson.M, sortField string, limit int64) ([]*T, error) {
	col, err := dm.collection()
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if sortField != "" {
		opts.SetSort(bson.D{{Key: sortField, Value: -1}})
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []*T
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		results = append(results, &doc)
	}

	return results, cursor.Err()
}

// Set upserts the given fields and refreshes the cache
func (dm *DataManager[T]) Set(ctx context.Context, query bson.M, data interface{}) (*T, error) {
	return dm.upsert(ctx, query, bson.M{"$set": data}, "set", data)
}

// Increment atomically adds the given amounts (an $inc document) and refreshes the cache
func (dm *DataManager[T]) Increment(ctx context.Context, query bson.M, amounts bson.M) (*T, error) {
	return dm.upsert(ctx, query, bson.M{"$inc": amounts}, "inc", amounts)
}

func (dm *DataManager[T]) upsert(ctx context.Context, query, update bson.M, op string, data interface{}) (*T, error) {
	cacheKey := dm.generateCacheKey(query)

	col, err := dm.collection()
	if err != nil {
		logger.Warn(fmt.Sprintf("DB offline. Encolando escritura para '%s'", dm.name), "DataManager")
		dm.cache.remove(cacheKey)
		dm.dbInstance.AddToWriteQueue(QueuedOperation{
			CollectionName: dm.name,
			Query:          query,
			Operation:      op,
			Data:           data,
		})
		return nil, err
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result T
	if err := col.FindOneAndUpdate(ctx, query, update, opts).Decode(&result); err != nil {
		logger.Error(fmt.Sprintf("Error en '%s' con DB conectada: %v", op, err), "DataManager")
		dm.cache.remove(cacheKey)
		return nil, err
	}

	dm.cache.put(cacheKey, &result, dm.options.MaxCacheSize)
	return &result, nil
}

// Delete removes a document from the database and cache
func (dm *DataManager[T]) Delete(ctx context.Context, query bson.M) error {
	dm.cache.remove(dm.generateCacheKey(query))

	col, err := dm.collection()
	if err != nil {
		logger.Warn(fmt.Sprintf("DB offline. Encolando eliminación para '%s'", dm.name), "DataManager")
		dm.dbInstance.AddToWriteQueue(QueuedOperation{
			CollectionName: dm.name,
			Query:          query,
			Operation:      "delete",
		})
		return nil
	}

	_, err = col.DeleteOne(ctx, query)
	return err
}

// ClearCache clears the entire cache
func (dm *DataManager[T]) ClearCache() {
	dm.cache.clear()
}

// CacheSize returns the current cache size
func (dm *DataManager[T]) CacheSize() int {
	return dm.cache.len()
}
