package users_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/arllen133/userforms/users"
)

func BenchmarkInsert(b *testing.B) {
	gw := setupGateway(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gw.Insert(ctx, "bench", 30, fmt.Sprintf("bench%d@test.com", i)); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}
}

func BenchmarkListAll100(b *testing.B) {
	gw := setupGateway(b)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if _, err := gw.Insert(ctx, "seed", i, fmt.Sprintf("seed%d@test.com", i)); err != nil {
			b.Fatalf("Failed to seed user: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		list, err := gw.ListAll(ctx)
		if err != nil {
			b.Fatalf("ListAll failed: %v", err)
		}
		if len(list) != 100 {
			b.Fatalf("ListAll returned %d users", len(list))
		}
	}
}

func BenchmarkDispatchUpdate(b *testing.B) {
	gw := setupGateway(b)
	d := users.NewDispatcher(gw)
	ctx := context.Background()

	u, err := gw.Insert(ctx, "seed", 1, "seed@test.com")
	if err != nil {
		b.Fatalf("Failed to seed user: %v", err)
	}
	id := strconv.FormatInt(u.ID, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		form := submit("_intent", "update", "id", id, "name", "bench", "age", strconv.Itoa(i), "email", "bench@test.com")
		if r := d.Handle(ctx, form); !r.OK() {
			b.Fatalf("Handle failed: %s", r.Message)
		}
	}
}
