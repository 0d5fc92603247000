// Package wazerovm materializes the host-function registry as wazero host
// modules, so wasm guest bytecode can import and call the native surface.
// It performs import resolution against the registry before any guest code
// runs, and converts host traps into wasm traps.
package wazerovm

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	lumenvm "github.com/lumenvm/lumenvm"
	"github.com/lumenvm/lumenvm/registry"
	"github.com/lumenvm/lumenvm/types"
)

// VM wraps a wazero runtime bound to one host.
type VM struct {
	runtime wazero.Runtime
	host    *lumenvm.Host
	logger  zerolog.Logger
}

// New creates a runtime and instantiates one wazero host module per
// manifest module, each function bridged to the registry's dispatch path.
func New(ctx context.Context, host *lumenvm.Host, logger zerolog.Logger) (*VM, error) {
	vm := &VM{
		runtime: wazero.NewRuntime(ctx),
		host:    host,
		logger:  logger,
	}
	if err := vm.buildHostModules(ctx); err != nil {
		_ = vm.runtime.Close(ctx)
		return nil, err
	}
	return vm, nil
}

func (vm *VM) buildHostModules(ctx context.Context) error {
	byModule := make(map[string][]*registry.FuncInfo)
	for _, info := range vm.host.Registry().Funcs() {
		byModule[info.Module] = append(byModule[info.Module], info)
	}
	modules := make([]string, 0, len(byModule))
	for mod := range byModule {
		modules = append(modules, mod)
	}
	sort.Strings(modules)

	for _, mod := range modules {
		builder := vm.runtime.NewHostModuleBuilder(mod)
		for _, info := range byModule[mod] {
			info := info
			params := make([]api.ValueType, info.Arity)
			for i := range params {
				params[i] = api.ValueTypeI64
			}
			bridge := api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				args := make([]uint64, info.Arity)
				copy(args, stack[:info.Arity])
				res, err := vm.host.Registry().Dispatch(vm.host, info, args)
				if err != nil {
					// wazero converts the panic into a trap that aborts the
					// current guest call.
					panic(err)
				}
				stack[0] = res
			})
			builder.NewFunctionBuilder().
				WithGoModuleFunction(bridge, params, []api.ValueType{api.ValueTypeI64}).
				Export(info.Name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return types.NewHostError(types.CodeInternal, "host module %q: %v", mod, err)
		}
		vm.logger.Debug().Str("module", mod).Int("funcs", len(byModule[mod])).
			Msg("host module instantiated")
	}
	return nil
}

// Instantiate compiles a guest module and resolves every declared import
// against the registry before instantiation; an unknown import or an arity
// mismatch fails here, before any guest code executes.
func (vm *VM) Instantiate(ctx context.Context, code []byte) (api.Module, error) {
	compiled, err := vm.runtime.CompileModule(ctx, code)
	if err != nil {
		return nil, types.NewHostError(types.CodeImportResolution, "compile: %v", err)
	}
	for _, def := range compiled.ImportedFunctions() {
		module, name, isImport := def.Import()
		if !isImport {
			continue
		}
		if _, err := vm.host.Registry().Resolve(module, name, len(def.ParamTypes())); err != nil {
			_ = compiled.Close(ctx)
			return nil, err
		}
	}
	mod, err := vm.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, types.NewHostError(types.CodeGuestTrap, "instantiate: %v", err)
	}
	return mod, nil
}

// Close releases the runtime and all instantiated modules.
func (vm *VM) Close(ctx context.Context) error {
	return vm.runtime.Close(ctx)
}
