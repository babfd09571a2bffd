package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tests require Redis running on localhost:6379 and skip otherwise.
const testRedisAddr = "localhost:6379"

// setupTestCache creates a cache instance for testing.
// Returns the cache, the underlying client and a cleanup function.
func setupTestCache(t *testing.T, prefix string) (*Cache, *redis.Client, func()) {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: testRedisAddr,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	// Clean up any existing keys with this prefix
	cleanupKeys(ctx, client, prefix+"*")

	cache := New(client, prefix, 5*time.Minute)

	cleanup := func() {
		cleanupKeys(ctx, client, prefix+"*")
		client.Close()
	}

	return cache, client, cleanup
}

// cleanupKeys removes all keys matching the pattern.
func cleanupKeys(ctx context.Context, client *redis.Client, pattern string) {
	var cursor uint64
	for {
		keys, nextCursor, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
}

func TestNew(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	defer client.Close()

	cache := New(client, "test:", 10*time.Minute)

	if cache == nil {
		t.Fatal("New() returned nil")
	}
	if cache.prefix != "test:" {
		t.Errorf("prefix = %q, want %q", cache.prefix, "test:")
	}
	if cache.ttl != 10*time.Minute {
		t.Errorf("ttl = %v, want %v", cache.ttl, 10*time.Minute)
	}
}

func TestCache_SetAndGet(t *testing.T) {
	cache, _, cleanup := setupTestCache(t, "test:setget:")
	defer cleanup()

	ctx := context.Background()

	type listEntry struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Status string `json:"status"`
	}

	testCases := []struct {
		name  string
		key   string
		value []listEntry
	}{
		{
			name: "single entry",
			key:  "user-a::",
			value: []listEntry{
				{ID: "t1", Title: "Buy milk", Status: "pending"},
			},
		},
		{
			name: "filtered key with separators",
			key:  "user-a:completed:milk",
			value: []listEntry{
				{ID: "t2", Title: "Buy Milk", Status: "completed"},
				{ID: "t3", Title: "Milk the cow", Status: "completed"},
			},
		},
		{
			name:  "empty result set",
			key:   "user-b::",
			value: []listEntry{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := cache.Set(ctx, tc.key, tc.value); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			var result []listEntry
			found, err := cache.Get(ctx, tc.key, &result)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !found {
				t.Fatal("Get() returned found = false, want true")
			}

			if len(result) != len(tc.value) {
				t.Fatalf("len(result) = %d, want %d", len(result), len(tc.value))
			}
			for i := range result {
				if result[i] != tc.value[i] {
					t.Errorf("result[%d] = %+v, want %+v", i, result[i], tc.value[i])
				}
			}
		})
	}
}

func TestCache_GetMiss(t *testing.T) {
	cache, _, cleanup := setupTestCache(t, "test:miss:")
	defer cleanup()

	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "nonexistent", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() returned found = true for nonexistent key, want false")
	}
}

func TestCache_DeletePattern(t *testing.T) {
	cache, _, cleanup := setupTestCache(t, "test:pattern:")
	defer cleanup()

	ctx := context.Background()

	// Several cached lists for one user, one for another
	userAKeys := []string{"user-a::", "user-a:pending:", "user-a::milk"}
	for i, key := range userAKeys {
		if err := cache.Set(ctx, key, i); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if err := cache.Set(ctx, "user-b::", "keep me"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := cache.DeletePattern(ctx, "user-a:*"); err != nil {
		t.Fatalf("DeletePattern() error = %v", err)
	}

	// All of user A's lists are gone
	for _, key := range userAKeys {
		var result int
		found, _ := cache.Get(ctx, key, &result)
		if found {
			t.Errorf("Key %q should have been deleted by pattern", key)
		}
	}

	// User B's list survives
	var result string
	found, _ := cache.Get(ctx, "user-b::", &result)
	if !found {
		t.Error("Key 'user-b::' should not have been deleted")
	}
}

func TestCache_KeyPrefix(t *testing.T) {
	cache, client, cleanup := setupTestCache(t, "myprefix:")
	defer cleanup()

	ctx := context.Background()

	if err := cache.Set(ctx, "mykey", "myvalue"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// The key is stored with the prefix applied
	result, err := client.Get(ctx, "myprefix:mykey").Result()
	if err != nil {
		t.Fatalf("Direct Redis Get error = %v", err)
	}
	if result != `"myvalue"` { // JSON encoded string
		t.Errorf("Stored value = %q, want %q", result, `"myvalue"`)
	}
}

func TestCache_TTLApplied(t *testing.T) {
	cache, client, cleanup := setupTestCache(t, "test:ttl:")
	defer cleanup()

	ctx := context.Background()

	if err := cache.Set(ctx, "expiring", "value"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	ttl, err := client.TTL(ctx, "test:ttl:expiring").Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > 5*time.Minute {
		t.Errorf("TTL = %v, want within (0, 5m]", ttl)
	}
}

func TestCache_Ping(t *testing.T) {
	cache, _, cleanup := setupTestCache(t, "test:ping:")
	defer cleanup()

	if err := cache.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
