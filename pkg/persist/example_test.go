package persist_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/stagehand/stagehand/pkg/actor"
	"github.com/stagehand/stagehand/pkg/persist"
)

// ExampleNewSQLiteBackend demonstrates creating and initializing a SQLite
// snapshot backend.
func ExampleNewSQLiteBackend() {
	dir, _ := os.MkdirTemp("", "stagehand-example")
	defer os.RemoveAll(dir)

	backend, err := persist.NewSQLiteBackend(persist.SQLiteConfig{
		Path: filepath.Join(dir, "snapshots.db"),
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := backend.Init(ctx); err != nil {
		log.Fatal(err)
	}
	if err := backend.Migrate(ctx); err != nil {
		log.Fatal(err)
	}
	defer backend.Close()

	fmt.Println("backend ready")
	// Output: backend ready
}

// ExampleGuard demonstrates saving and loading a validated snapshot.
func ExampleGuard() {
	guard := persist.NewGuard(persist.NewMemoryBackend(), nil, nil, nil)
	ctx := context.Background()

	snap := actor.Snapshot{
		Status:  actor.StatusActive,
		Context: map[string]interface{}{"scene": "intro"},
	}
	if err := guard.Save(ctx, "narrator", snap); err != nil {
		log.Fatal(err)
	}

	loaded, err := guard.Load(ctx, "narrator")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("status:", loaded.Status)
	fmt.Println("scene:", loaded.Context["scene"])
	// Output:
	// status: active
	// scene: intro
}

// ExampleGuard_Load demonstrates the error taxonomy: missing entries,
// corrupted payloads, and storage failures are distinguishable.
func ExampleGuard_Load() {
	backend := persist.NewMemoryBackend()
	guard := persist.NewGuard(backend, nil, nil, nil)
	ctx := context.Background()

	_, err := guard.Load(ctx, "ghost")
	fmt.Println("missing:", errors.Is(err, persist.ErrNotFound))

	// Something wrote garbage under an actor key.
	_ = backend.SetItem(ctx, "stagehand.actor.broken", `{"status":"???","context":{}}`)
	_, err = guard.Load(ctx, "broken")
	fmt.Println("corrupted:", persist.IsCorruption(err))
	// Output:
	// missing: true
	// corrupted: true
}
