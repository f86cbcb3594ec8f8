package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/uilayers/internal/domain/ui"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

// DefaultScriptTimeout bounds each hook call of a script template
const DefaultScriptTimeout = 100 * time.Millisecond

var scriptHooks = []string{"onEnter", "onPause", "onResume", "onClose"}

// scriptBuilder compiles each distinct script once
type scriptBuilder struct {
	logger   *zap.Logger
	delayer  Delayer
	timeout  time.Duration
	breakers *resilience.Group // nil disables quarantine
	programs sync.Map          // tag+source -> *goja.Program
}

func newScriptBuilder(logger *zap.Logger, opts Options) *scriptBuilder {
	timeout := opts.ScriptTimeout
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}
	return &scriptBuilder{
		logger:   logger,
		delayer:  opts.Delayer,
		timeout:  timeout,
		breakers: opts.Breakers,
	}
}

// breaker returns the quarantine breaker for a script tag
func (b *scriptBuilder) breaker(tag string) *resilience.Breaker {
	if b.breakers == nil {
		return nil
	}
	return b.breakers.Get(ScriptBreakerName(tag))
}

// ScriptBreakerName is the breaker group key for a script template
func ScriptBreakerName(tag string) string {
	return "script:" + tag
}

func (b *scriptBuilder) Validate(tmpl *types.Template) error {
	if strings.TrimSpace(tmpl.Script) == "" {
		return errors.New("script template has no script")
	}
	_, err := b.program(tmpl)
	return err
}

func (b *scriptBuilder) program(tmpl *types.Template) (*goja.Program, error) {
	key := tmpl.Tag + "\x00" + tmpl.Script
	if p, ok := b.programs.Load(key); ok {
		return p.(*goja.Program), nil
	}

	p, err := goja.Compile(tmpl.Tag+".js", tmpl.Script, false)
	if err != nil {
		return nil, fmt.Errorf("compile script: %w", err)
	}
	b.programs.Store(key, p)
	return p, nil
}

func (b *scriptBuilder) Build(tmpl *types.Template, layer types.Layer) (ui.Behavior, error) {
	program, err := b.program(tmpl)
	if err != nil {
		return nil, err
	}

	breaker := b.breaker(tmpl.Tag)
	if breaker != nil {
		if err := breaker.Allow(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplateQuarantined, tmpl.Tag, err)
		}
	}

	s := &scriptBehavior{
		vm:      goja.New(),
		tag:     tmpl.Tag,
		tmpl:    *tmpl,
		layer:   layer,
		timeout: b.timeout,
		delayer: b.delayer,
		logger:  b.logger.With(zap.String("template", tmpl.Tag)),
		breaker: breaker,
		hooks:   make(map[string]goja.Callable, len(scriptHooks)),
	}
	if err := s.setupGlobals(); err != nil {
		return nil, err
	}

	if err := s.guard(func() error {
		_, err := s.vm.RunProgram(program)
		return err
	}); err != nil {
		s.report(err)
		return nil, fmt.Errorf("run script %s: %w", tmpl.Tag, err)
	}

	for _, name := range scriptHooks {
		if fn, ok := goja.AssertFunction(s.vm.Get(name)); ok {
			s.hooks[name] = fn
		}
	}
	return s, nil
}

// scriptBehavior forwards lifecycle hooks to JavaScript functions
type scriptBehavior struct {
	vm      *goja.Runtime
	tag     string
	tmpl    types.Template
	layer   types.Layer
	timeout time.Duration
	delayer Delayer
	logger  *zap.Logger
	breaker *resilience.Breaker
	hooks   map[string]goja.Callable
	inst    *ui.Instance
	timers  []func()
	closed  bool
}

func (s *scriptBehavior) Template() types.Template { return s.tmpl }

func (s *scriptBehavior) Attach(inst *ui.Instance) { s.inst = inst }

func (s *scriptBehavior) OnEnter(args any) { s.call("onEnter", s.vm.ToValue(args)) }
func (s *scriptBehavior) OnPause()         { s.call("onPause") }
func (s *scriptBehavior) OnResume()        { s.call("onResume") }

func (s *scriptBehavior) OnClose() {
	s.call("onClose")
	s.closed = true
	for _, cancel := range s.timers {
		cancel()
	}
	s.timers = nil
}

func (s *scriptBehavior) call(hook string, args ...goja.Value) {
	fn, ok := s.hooks[hook]
	if !ok {
		return
	}
	s.invoke(hook, fn, args...)
}

func (s *scriptBehavior) invoke(name string, fn goja.Callable, args ...goja.Value) {
	err := s.guard(func() error {
		_, err := fn(goja.Undefined(), args...)
		return err
	})
	if err != nil {
		s.logger.Warn("Script hook failed", zap.String("hook", name), zap.Error(err))
	}
	s.report(err)
}

// report feeds a hook outcome to the quarantine breaker
func (s *scriptBehavior) report(err error) {
	if s.breaker == nil {
		return
	}
	if err != nil {
		s.breaker.Failure()
		return
	}
	s.breaker.Success()
}

// guard runs fn with the interrupt timer armed
func (s *scriptBehavior) guard(fn func() error) error {
	timer := time.AfterFunc(s.timeout, func() {
		s.vm.Interrupt("script timeout exceeded")
	})
	defer func() {
		timer.Stop()
		s.vm.ClearInterrupt()
	}()
	return fn()
}

func (s *scriptBehavior) setupGlobals() error {
	s.vm.Set("require", goja.Undefined())
	s.vm.Set("process", goja.Undefined())
	s.vm.Set("module", goja.Undefined())
	s.vm.Set("exports", goja.Undefined())

	console := s.vm.NewObject()
	console.Set("log", s.consoleFunc(zap.InfoLevel))
	console.Set("info", s.consoleFunc(zap.InfoLevel))
	console.Set("warn", s.consoleFunc(zap.WarnLevel))
	console.Set("error", s.consoleFunc(zap.ErrorLevel))
	if err := s.vm.Set("console", console); err != nil {
		return err
	}

	api := s.vm.NewObject()
	api.Set("tag", s.tag)
	api.Set("layer", string(s.layer))
	api.Set("close", func(goja.FunctionCall) goja.Value {
		if s.inst != nil {
			s.inst.Close()
		}
		return goja.Undefined()
	})
	api.Set("after", s.after)
	return s.vm.Set("ui", api)
}

// after implements ui.after(ms, fn) on the frame scheduler
func (s *scriptBehavior) after(call goja.FunctionCall) goja.Value {
	if s.delayer == nil || s.closed {
		return goja.Undefined()
	}
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		panic(s.vm.NewTypeError("ui.after expects (ms, function)"))
	}
	d := time.Duration(call.Argument(0).ToInteger()) * time.Millisecond

	cancel := s.delayer.Delay(d, func() {
		if !s.closed {
			s.invoke("after", fn)
		}
	})
	s.timers = append(s.timers, cancel)
	return goja.Undefined()
}

func (s *scriptBehavior) consoleFunc(level zapcore.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}
		if ce := s.logger.Check(level, strings.Join(parts, " ")); ce != nil {
			ce.Write(zap.String("source", "console"))
		}
		return goja.Undefined()
	}
}
