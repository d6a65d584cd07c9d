package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopSchedulerHooks{}
	s.OnSortStart(ctx, "release", 4)
	s.OnSortComplete(ctx, "release", 2, time.Second, nil)
	s.OnEdgeBroken(ctx, "release", "seed", "migrate")

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "schedule")
	c.OnCacheMiss(ctx, "schedule")
	c.OnCacheSet(ctx, "schedule", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/schedule")
	h.OnResponse(ctx, "POST", "/v1/schedule", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Scheduler().(NoopSchedulerHooks); !ok {
		t.Error("Scheduler() should return NoopSchedulerHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customScheduler := &testSchedulerHooks{}
	SetSchedulerHooks(customScheduler)
	if Scheduler() != customScheduler {
		t.Error("SetSchedulerHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Scheduler().(NoopSchedulerHooks); !ok {
		t.Error("Reset() should restore NoopSchedulerHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testSchedulerHooks{}
	SetSchedulerHooks(custom)
	SetSchedulerHooks(nil)

	if Scheduler() != custom {
		t.Error("SetSchedulerHooks(nil) should be ignored")
	}
}

type testSchedulerHooks struct{ NoopSchedulerHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
