package registry

import (
	"errors"
	"time"

	"github.com/GriffinCanCode/uilayers/internal/domain/ui"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

// DefaultToastTTL applies to toast templates without a ttl
const DefaultToastTTL = 3 * time.Second

// Content is implemented by behaviors that carry renderable template content
type Content interface {
	Template() types.Template
}

// staticBehavior renders its template and nothing else
type staticBehavior struct {
	ui.Base
	tmpl types.Template
}

func (b *staticBehavior) Template() types.Template { return b.tmpl }

type staticBuilder struct{}

func (staticBuilder) Validate(*types.Template) error { return nil }

func (staticBuilder) Build(tmpl *types.Template, _ types.Layer) (ui.Behavior, error) {
	return &staticBehavior{tmpl: *tmpl}, nil
}

// toastBehavior closes itself after its lifetime through the instance router
type toastBehavior struct {
	ui.Base
	tmpl     types.Template
	lifetime time.Duration
	delayer  Delayer
	inst     *ui.Instance
	cancel   func()
}

func (b *toastBehavior) Template() types.Template { return b.tmpl }

func (b *toastBehavior) Attach(inst *ui.Instance) { b.inst = inst }

func (b *toastBehavior) OnEnter(any) {
	if b.delayer == nil || b.lifetime <= 0 || b.inst == nil {
		return
	}
	b.cancel = b.delayer.Delay(b.lifetime, b.inst.Close)
}

func (b *toastBehavior) OnClose() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

type toastBuilder struct {
	delayer Delayer
}

func (b toastBuilder) Validate(tmpl *types.Template) error {
	if tmpl.TTL == "" {
		tmpl.TTL = DefaultToastTTL.String()
	}
	lifetime, err := tmpl.Lifetime()
	if err != nil {
		return err
	}
	if lifetime == 0 {
		return errors.New("toast ttl must be positive")
	}
	return nil
}

func (b toastBuilder) Build(tmpl *types.Template, _ types.Layer) (ui.Behavior, error) {
	lifetime, err := tmpl.Lifetime()
	if err != nil {
		return nil, err
	}
	return &toastBehavior{tmpl: *tmpl, lifetime: lifetime, delayer: b.delayer}, nil
}
