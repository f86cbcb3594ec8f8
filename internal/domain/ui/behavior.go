package ui

import "github.com/GriffinCanCode/uilayers/internal/shared/types"

// Behavior is the set of lifecycle hooks the orchestrator invokes on a UI instance.
// Hooks run synchronously on the goroutine that owns the Manager.
type Behavior interface {
	// OnEnter runs once, right after the instance is installed and active.
	OnEnter(args any)
	// OnPause runs when a panel is pushed above this one.
	OnPause()
	// OnResume runs when this panel becomes the top of the stack again.
	OnResume()
	// OnClose must release the instance's resources before returning.
	OnClose()
}

// Attacher is implemented by behaviors that need their own instance handle,
// usually to request dismissal later through Instance.Close.
type Attacher interface {
	Attach(inst *Instance)
}

// Base provides empty hooks. Embed it and override what you need.
type Base struct{}

func (Base) OnEnter(any) {}
func (Base) OnPause()    {}
func (Base) OnResume()   {}
func (Base) OnClose()    {}

// Factory resolves a type tag to a freshly constructed behavior.
// It must fail without side effects when no template is registered for tag.
type Factory interface {
	Construct(tag string, layer types.Layer) (Behavior, error)
}

// FactoryFunc adapts a function to Factory
type FactoryFunc func(tag string, layer types.Layer) (Behavior, error)

// Construct calls f(tag, layer)
func (f FactoryFunc) Construct(tag string, layer types.Layer) (Behavior, error) {
	return f(tag, layer)
}

// Router is the single close entry point instances use to dismiss themselves
type Router interface {
	CloseUI(inst *Instance)
}
