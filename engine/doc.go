// Package engine runs emitted modules on the wazero runtime.
//
// An Engine owns one wazero runtime. Load compiles and instantiates a
// module under a name; the returned Module lists its exported functions and
// calls them:
//
//	eng := engine.New(ctx, engine.Config{MemoryLimitPages: 256})
//	defer eng.Close(ctx)
//
//	mod, err := eng.Load(ctx, "add", data)
//	if err != nil {
//	    return err
//	}
//	out, err := mod.CallF32(ctx, "add", 1.5, 2)
//
// Compile failures are reported as invalid_data errors, instantiation
// failures as instantiation errors and guest traps as trap errors, all in
// the runtime phase.
//
// # Thread Safety
//
// Engine and Module are safe for concurrent use.
//
// Logging goes through a package-level zap logger, a no-op until SetLogger
// is called.
package engine
