// Package runtime wires storage, config, and repository handles into a
// single-node sapling instance. It exposes Open/Close, basic health checks,
// and helpers to open the stores used by higher-level tooling.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	r, _ := rt.OpenRepo("main")
//	_ = r.SaveBatch(context.Background(), batch)
package runtime
