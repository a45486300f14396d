package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasmc/errors"
)

// Engine wraps a wazero runtime that executes emitted modules.
type Engine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32
}

// New creates a new wazero-based engine
func New(ctx context.Context, cfg Config) *Engine {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Engine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}
}

// Load compiles and instantiates a module. Names must be unique within an
// engine; an empty name instantiates an anonymous module.
func (e *Engine) Load(ctx context.Context, name string, data []byte) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, data)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "compile module")
	}

	instance, err := e.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, errors.Instantiation(err)
	}

	m := &Module{
		name:     name,
		compiled: compiled,
		instance: instance,
	}
	for exportName, def := range compiled.ExportedFunctions() {
		m.funcs = append(m.funcs, FuncInfo{
			Name:    exportName,
			Params:  def.ParamTypes(),
			Results: def.ResultTypes(),
		})
	}
	sort.Slice(m.funcs, func(i, j int) bool { return m.funcs[i].Name < m.funcs[j].Name })

	Logger().Debug("module loaded",
		zap.String("name", name),
		zap.Int("size", len(data)),
		zap.Int("functions", len(m.funcs)))
	return m, nil
}

// Close closes the runtime and every module loaded into it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// FuncInfo describes an exported function.
type FuncInfo struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// String renders the function as name(params) -> (results).
func (f FuncInfo) String() string {
	return f.Name + "(" + typeNames(f.Params) + ") -> (" + typeNames(f.Results) + ")"
}

// AllF32 reports whether every parameter and result is an f32.
func (f FuncInfo) AllF32() bool {
	for _, t := range f.Params {
		if t != api.ValueTypeF32 {
			return false
		}
	}
	for _, t := range f.Results {
		if t != api.ValueTypeF32 {
			return false
		}
	}
	return true
}

func typeNames(types []api.ValueType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = api.ValueTypeName(t)
	}
	return strings.Join(names, ", ")
}

// Module is an instantiated module. Calls fetch a fresh function handle
// each time, so a Module may be called from several goroutines.
type Module struct {
	compiled wazero.CompiledModule
	instance api.Module
	name     string
	funcs    []FuncInfo
}

// Name returns the instance name given to Load.
func (m *Module) Name() string { return m.name }

// Functions returns the exported functions sorted by name.
func (m *Module) Functions() []FuncInfo {
	out := make([]FuncInfo, len(m.funcs))
	copy(out, m.funcs)
	return out
}

// Function returns the exported function named name.
func (m *Module) Function(name string) (FuncInfo, bool) {
	for _, f := range m.funcs {
		if f.Name == name {
			return f, true
		}
	}
	return FuncInfo{}, false
}

// MemoryPages returns the current size of the module's memory in pages.
// ok is false when the module has no memory.
func (m *Module) MemoryPages() (pages uint32, ok bool) {
	mem := m.instance.Memory()
	if mem == nil {
		return 0, false
	}
	return mem.Size() / 65536, true
}

// CallF32 calls an exported function whose parameters and results are all f32.
func (m *Module) CallF32(ctx context.Context, name string, args ...float32) ([]float32, error) {
	info, ok := m.Function(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseRuntime, "function", name)
	}
	if !info.AllF32() {
		return nil, errors.InvalidInput(errors.PhaseRuntime,
			fmt.Sprintf("%s is not an f32 function", info))
	}
	if len(args) != len(info.Params) {
		return nil, errors.InvalidInput(errors.PhaseRuntime,
			fmt.Sprintf("%s takes %d arguments, got %d", name, len(info.Params), len(args)))
	}

	params := make([]uint64, len(args))
	for i, a := range args {
		params[i] = api.EncodeF32(a)
	}

	Logger().Debug("call", zap.String("module", m.name), zap.String("function", name), zap.Float32s("args", args))
	raw, err := m.instance.ExportedFunction(name).Call(ctx, params...)
	if err != nil {
		return nil, errors.Trap(name, err)
	}

	results := make([]float32, len(raw))
	for i, r := range raw {
		results[i] = api.DecodeF32(r)
	}
	return results, nil
}

// Close closes the instance and its compiled form.
func (m *Module) Close(ctx context.Context) error {
	err := m.instance.Close(ctx)
	if cerr := m.compiled.Close(ctx); err == nil {
		err = cerr
	}
	return err
}
