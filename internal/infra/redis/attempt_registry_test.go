package redis

import (
	"context"
	"net"
	"testing"
	"time"

	"quiz-runner/internal/app"
	"quiz-runner/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAttemptRegistrySetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	registry := NewAttemptRegistry(newClient(mr), time.Minute)
	attempt := app.NewAttempt("a1", "u1", "quiz-1", domain.Capability{}, nil, nil, app.AttemptConfig{})

	registry.Put(attempt)
	if got, _ := mr.Get("attempt:a1"); got != "quiz-1" {
		t.Fatalf("expected liveness key holding the quiz id, got %q", got)
	}
	if _, ok := registry.Get("a1"); !ok {
		t.Fatalf("expected attempt registered locally")
	}

	mr.FastForward(30 * time.Second)
	if err := registry.Touch(context.Background(), "a1"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if ttl := mr.TTL("attempt:a1"); ttl != time.Minute {
		t.Fatalf("expected ttl refreshed, got %v", ttl)
	}

	registry.Delete("a1")
	if mr.Exists("attempt:a1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestAttemptRegistryLookupsDoNotWaitOnRedis(t *testing.T) {
	// accepts connections and never answers
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	client := redis.NewClient(&redis.Options{Addr: ln.Addr().String()})
	defer client.Close()
	registry := NewAttemptRegistry(client, time.Minute)
	attempt := app.NewAttempt("a1", "u1", "quiz-1", domain.Capability{}, nil, nil, app.AttemptConfig{})

	putDone := make(chan struct{})
	go func() {
		registry.Put(attempt)
		close(putDone)
	}()

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := registry.Get("a1"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("lookup blocked behind the liveness write")
		}
		time.Sleep(time.Millisecond)
	}
	select {
	case <-putDone:
		t.Fatalf("expected the liveness write to still be pending")
	default:
	}
	<-putDone
}
