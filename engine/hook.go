package engine

// HookPos names a site in the engine where a Hook can be invoked. External
// collaborators (trace exporters, the out-of-process visual layer) attach
// behavior at these positions without the engine importing any of them.
type HookPos struct {
	Name string
}

// HookCtx carries the information describing why a hook fired.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable is anything that accepts Hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// Hook is invoked synchronously by a Hookable at one of its HookPos sites.
// A hook must not block; heavy work must be deferred by the hook itself.
type Hook interface {
	Func(ctx HookCtx)
}

// HookPosSpike marks a neuron emitting a spike.
var HookPosSpike = &HookPos{Name: "Spike"}

// HookPosWeightChange marks a synapse's weight being adjusted by STDP.
var HookPosWeightChange = &HookPos{Name: "WeightChange"}

// HookPosHomeostasis marks a homeostatic threshold adjustment pass.
var HookPosHomeostasis = &HookPos{Name: "Homeostasis"}

// HookPosStep marks the completion of one Network.Step.
var HookPosStep = &HookPos{Name: "Step"}

// HookableBase provides a default Hookable implementation by embedding.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// NumHooks returns how many hooks are registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// InvokeHook runs every registered hook with the given context.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
