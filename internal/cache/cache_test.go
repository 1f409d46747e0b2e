package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New(time.Hour)

	c.Set("key1", "value1")

	val, found := c.Get("key1")
	assert.True(t, found)
	assert.Equal(t, "value1", val)
}

func TestCache_GetMissing(t *testing.T) {
	c := New(time.Hour)

	val, found := c.Get("nonexistent")
	assert.False(t, found)
	assert.Nil(t, val)
}

func TestCache_Expiration(t *testing.T) {
	c := New(50 * time.Millisecond)

	c.Set("key", "value")

	_, found := c.Get("key")
	assert.True(t, found)

	time.Sleep(100 * time.Millisecond)

	_, found = c.Get("key")
	assert.False(t, found)
}

func TestCache_SetWithTTL(t *testing.T) {
	c := New(time.Hour)

	c.SetWithTTL("short", "value", 50*time.Millisecond)
	c.Set("long", "value")

	time.Sleep(100 * time.Millisecond)

	_, found := c.Get("short")
	assert.False(t, found)
	_, found = c.Get("long")
	assert.True(t, found)
}

func TestCache_Delete(t *testing.T) {
	c := New(time.Hour)

	c.Set("key", "value")
	c.Delete("key")

	_, found := c.Get("key")
	assert.False(t, found)
}

func TestCache_Clear(t *testing.T) {
	c := New(time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Clear()

	_, found := c.Get("key1")
	assert.False(t, found)
	_, found = c.Get("key2")
	assert.False(t, found)
}

func TestStatusCache(t *testing.T) {
	sc := NewStatusCache()

	sc.Set(KeyStatus, "snapshot")
	sc.Set(KeyHost, "host-info")

	val, found := sc.Get(KeyStatus)
	assert.True(t, found)
	assert.Equal(t, "snapshot", val)

	val, found = sc.Get(KeyHost)
	assert.True(t, found)
	assert.Equal(t, "host-info", val)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(time.Hour)

	done := make(chan bool)

	go func() {
		for i := 0; i < 100; i++ {
			c.Set("key", i)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			c.Get("key")
		}
		done <- true
	}()

	<-done
	<-done
}
