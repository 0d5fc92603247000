package registry

import (
	"github.com/rs/zerolog"

	"github.com/lumenvm/lumenvm/budget"
	"github.com/lumenvm/lumenvm/types"
)

type funcKey struct {
	module string
	name   string
}

// Registry is the static table of every host function the guest is
// permitted to import. It is built once from a closed manifest and never
// changes afterwards; the set of things guest code can do is exactly the
// set of entries here.
type Registry struct {
	version uint32
	funcs   map[funcKey]*FuncInfo
	logger  zerolog.Logger
}

// New builds a registry from a manifest. Duplicate (module, name) pairs are
// a construction error, not a runtime one.
func New(version uint32, manifest []FuncInfo, logger zerolog.Logger) (*Registry, error) {
	funcs := make(map[funcKey]*FuncInfo, len(manifest))
	for i := range manifest {
		info := manifest[i]
		key := funcKey{module: info.Module, name: info.Name}
		if _, exists := funcs[key]; exists {
			return nil, types.NewHostError(types.CodeInternal,
				"duplicate host function %s.%s in manifest", info.Module, info.Name)
		}
		if info.Fn == nil {
			return nil, types.NewHostError(types.CodeInternal,
				"host function %s.%s has no implementation", info.Module, info.Name)
		}
		funcs[key] = &info
	}
	return &Registry{version: version, funcs: funcs, logger: logger}, nil
}

// Version identifies the manifest revision; changing the manifest is a
// protocol-version event.
func (r *Registry) Version() uint32 { return r.version }

// Len returns the number of registered host functions.
func (r *Registry) Len() int { return len(r.funcs) }

// Funcs returns all registered descriptors, for adapters that materialize
// the table (e.g. a wasm host module).
func (r *Registry) Funcs() []*FuncInfo {
	out := make([]*FuncInfo, 0, len(r.funcs))
	for _, info := range r.funcs {
		out = append(out, info)
	}
	return out
}

// Resolve looks up the descriptor for one declared guest import. It fails
// if the (module, name) pair is unknown or the requested arity differs from
// the declared one. Resolution happens at guest instantiation time, before
// any guest code executes.
func (r *Registry) Resolve(module, name string, arity int) (*FuncInfo, error) {
	info, ok := r.funcs[funcKey{module: module, name: name}]
	if !ok {
		return nil, types.NewHostError(types.CodeImportResolution,
			"unknown import %s.%s", module, name)
	}
	if arity != int(info.Arity) {
		return nil, types.NewHostError(types.CodeImportResolution,
			"import %s.%s expects arity %d, guest declared %d", module, name, info.Arity, arity)
	}
	return info, nil
}

// Dispatch invokes a resolved host function with raw argument words. Any
// native-side failure is converted into an opaque trap for the guest; the
// originating error is logged and recorded on the env for host diagnostics.
func (r *Registry) Dispatch(env Env, info *FuncInfo, args []uint64) (uint64, error) {
	if len(args) != int(info.Arity) {
		return 0, r.trap(env, info, types.NewHostError(types.CodeInternal,
			"%s.%s called with %d args, arity is %d", info.Module, info.Name, len(args), info.Arity))
	}
	if err := env.Budget().Charge(budget.DispatchHostFunction, 0); err != nil {
		return 0, r.trap(env, info, asHostError(err))
	}
	res, err := info.Fn(env, args)
	if err != nil {
		return 0, r.trap(env, info, asHostError(err))
	}
	return res, nil
}

func (r *Registry) trap(env Env, info *FuncInfo, herr *types.HostError) error {
	r.logger.Debug().
		Str("module", info.Module).
		Str("func", info.Name).
		Str("code", herr.Code.String()).
		Msg(herr.Msg)
	env.NoteTrap(herr)
	return &types.Trap{}
}

func asHostError(err error) *types.HostError {
	if herr, ok := err.(*types.HostError); ok {
		return herr
	}
	return types.NewHostError(types.CodeInternal, "%v", err)
}
