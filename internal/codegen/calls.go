package codegen

import "strings"

// CallTarget is where a call to an external function is routed.
type CallTarget struct {
	// Name is the emitted callee.
	Name string
	// Shim marks helpers the runtime must provide.
	Shim bool
	// Args keeps only the first Args operands; 0 keeps all.
	Args int
}

// CallTable maps external function names onto native OpenCL builtins or
// runtime shims. Keys ending in "." match any name with that prefix, so
// "llvm.sqrt." covers every overload.
type CallTable struct {
	exact  map[string]CallTarget
	prefix map[string]CallTarget
}

// NewCallTable creates an empty table.
func NewCallTable() *CallTable {
	return &CallTable{
		exact:  make(map[string]CallTarget),
		prefix: make(map[string]CallTarget),
	}
}

// DefaultCallTable covers the usual LLVM math intrinsics and CUDA libdevice
// entry points.
func DefaultCallTable() *CallTable {
	t := NewCallTable()
	for from, to := range map[string]string{
		"llvm.sqrt.":   "sqrt",
		"llvm.fabs.":   "fabs",
		"llvm.exp.":    "exp",
		"llvm.exp2.":   "exp2",
		"llvm.log.":    "log",
		"llvm.log2.":   "log2",
		"llvm.pow.":    "pow",
		"llvm.sin.":    "sin",
		"llvm.cos.":    "cos",
		"llvm.floor.":  "floor",
		"llvm.ceil.":   "ceil",
		"llvm.trunc.":  "trunc",
		"llvm.fma.":    "fma",
		"llvm.minnum.": "fmin",
		"llvm.maxnum.": "fmax",
		"llvm.ctpop.":  "popcount",
		"__nv_sqrtf":   "sqrt",
		"__nv_rsqrtf":  "rsqrt",
		"__nv_expf":    "exp",
		"__nv_logf":    "log",
		"__nv_powf":    "pow",
		"__nv_fabsf":   "fabs",
		"__nv_floorf":  "floor",
		"__nv_sinf":    "sin",
		"__nv_cosf":    "cos",
		"__nv_tanhf":   "tanh",
		"__nv_fminf":   "fmin",
		"__nv_fmaxf":   "fmax",
	} {
		t.AddNative(from, to)
	}
	// llvm.ctlz carries an is_zero_poison flag clz does not take.
	t.Add("llvm.ctlz.", CallTarget{Name: "clz", Args: 1})
	for from, to := range map[string]string{
		"llvm.memcpy.":     "clgen_memcpy",
		"llvm.memmove.":    "clgen_memmove",
		"llvm.memset.":     "clgen_memset",
		"llvm.bswap.":      "clgen_bswap",
		"__nv_erfcinvf":    "clgen_erfcinvf",
		"__nv_normcdff":    "clgen_normcdff",
		"__nv_normcdfinvf": "clgen_normcdfinvf",
	} {
		t.AddShim(from, to)
	}
	return t
}

// Add registers target for from.
func (t *CallTable) Add(from string, target CallTarget) {
	if strings.HasSuffix(from, ".") {
		t.prefix[from] = target
		return
	}
	t.exact[from] = target
}

// AddNative routes from to an OpenCL builtin.
func (t *CallTable) AddNative(from, to string) {
	t.Add(from, CallTarget{Name: to})
}

// AddShim routes from to a runtime helper.
func (t *CallTable) AddShim(from, to string) {
	t.Add(from, CallTarget{Name: to, Shim: true})
}

// Resolve finds the target for name. Exact entries win, then the longest
// matching prefix.
func (t *CallTable) Resolve(name string) (CallTarget, bool) {
	if target, ok := t.exact[name]; ok {
		return target, true
	}
	var (
		best    CallTarget
		bestLen int
	)
	for p, target := range t.prefix {
		if len(p) > bestLen && strings.HasPrefix(name, p) {
			best, bestLen = target, len(p)
		}
	}
	return best, bestLen > 0
}
