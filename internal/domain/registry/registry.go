package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/uilayers/internal/domain/ui"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
	"github.com/GriffinCanCode/uilayers/internal/shared/utils"
)

var (
	// ErrTemplateNotFound is returned by Construct when no template is registered for a tag
	ErrTemplateNotFound = errors.New("template not found")
	// ErrLayerNotAllowed is returned by Construct when a template forbids the requested layer
	ErrLayerNotAllowed = errors.New("layer not allowed for template")
	// ErrUnknownKind is returned by Register for a kind with no builder
	ErrUnknownKind = errors.New("unknown template kind")
	// ErrTemplateQuarantined is returned by Construct for a script whose hooks keep failing
	ErrTemplateQuarantined = errors.New("template quarantined")
)

// Builder turns a registered template into a fresh behavior
type Builder interface {
	// Validate rejects templates this builder cannot construct
	Validate(tmpl *types.Template) error
	// Build constructs a new behavior. It must not touch the UI manager.
	Build(tmpl *types.Template, layer types.Layer) (ui.Behavior, error)
}

// Delayer schedules a callback on the frame loop. frame.Scheduler implements it.
type Delayer interface {
	Delay(d time.Duration, fn func()) (cancel func())
}

// Registry is the explicit tag to template table the UI manager constructs from.
// It is safe for concurrent use; Construct is called from the frame loop while
// the API and the catalog watcher register templates.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*types.Template
	builders  map[types.TemplateKind]Builder

	logger   *zap.Logger
	breakers *resilience.Group
	hasher   *utils.Hasher
	content  *bluemonday.Policy
	plain    *bluemonday.Policy
	now      func() time.Time
}

// Options configures the built-in kinds
type Options struct {
	Delayer       Delayer           // Required for toast dismissal and script timers
	ScriptTimeout time.Duration     // Per-hook budget for script templates
	Breakers      *resilience.Group // Quarantines failing scripts when set
}

// New creates a registry with the static, toast and script kinds installed
func New(logger *zap.Logger, opts Options) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		templates: make(map[string]*types.Template),
		builders:  make(map[types.TemplateKind]Builder),
		logger:    logger,
		breakers:  opts.Breakers,
		hasher:    utils.DefaultHasher(),
		content:   bluemonday.UGCPolicy(),
		plain:     bluemonday.StrictPolicy(),
		now:       time.Now,
	}

	r.builders[types.KindStatic] = staticBuilder{}
	r.builders[types.KindToast] = toastBuilder{delayer: opts.Delayer}
	r.builders[types.KindScript] = newScriptBuilder(logger, opts)
	return r
}

// RegisterKind installs or replaces the builder for kind
func (r *Registry) RegisterKind(kind types.TemplateKind, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[kind] = b
}

// Register validates, sanitizes and stores tmpl, replacing any template with the same tag
func (r *Registry) Register(tmpl types.Template) (*types.Template, error) {
	prepared, err := r.prepare(tmpl)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	prev, existed := r.templates[prepared.Tag]
	r.templates[prepared.Tag] = prepared
	r.mu.Unlock()

	if !existed || prev.Revision != prepared.Revision {
		r.release(prepared)
	}

	r.logger.Debug("Template registered",
		zap.String("tag", prepared.Tag),
		zap.String("kind", string(prepared.Kind)),
		zap.String("revision", utils.ShortHash(prepared.Revision)))

	cp := *prepared
	return &cp, nil
}

func (r *Registry) prepare(tmpl types.Template) (*types.Template, error) {
	if err := utils.ValidateTag(tmpl.Tag); err != nil {
		return nil, err
	}
	if tmpl.Kind == "" {
		tmpl.Kind = types.KindStatic
	}

	r.mu.RLock()
	builder, ok := r.builders[tmpl.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, tmpl.Kind)
	}

	for _, l := range tmpl.Layers {
		if !l.Valid() {
			return nil, fmt.Errorf("template %s: invalid layer %q", tmpl.Tag, l)
		}
	}
	if err := utils.ValidateString(tmpl.Title, "title", 0, utils.MaxTitleLength, false); err != nil {
		return nil, err
	}
	if err := utils.ValidateString(tmpl.Description, "description", 0, utils.MaxDescriptionLength, false); err != nil {
		return nil, err
	}
	if err := utils.ValidateMeta(tmpl.Meta); err != nil {
		return nil, err
	}
	if len(tmpl.Script) > utils.MaxScriptSize {
		return nil, fmt.Errorf("template %s: script exceeds %d bytes", tmpl.Tag, utils.MaxScriptSize)
	}
	if _, err := tmpl.Lifetime(); err != nil {
		return nil, err
	}

	tmpl.Title = strings.TrimSpace(r.plain.Sanitize(tmpl.Title))
	tmpl.Description = strings.TrimSpace(r.plain.Sanitize(tmpl.Description))
	tmpl.Body = r.content.Sanitize(tmpl.Body)
	if len(tmpl.Body) > utils.MaxBodySize {
		return nil, fmt.Errorf("template %s: body exceeds %d bytes", tmpl.Tag, utils.MaxBodySize)
	}

	if err := builder.Validate(&tmpl); err != nil {
		return nil, fmt.Errorf("template %s: %w", tmpl.Tag, err)
	}

	revision, err := r.hasher.HashJSON(revisionFields(&tmpl))
	if err != nil {
		return nil, err
	}
	tmpl.Revision = revision
	tmpl.UpdatedAt = r.now()
	if tmpl.Source == "" {
		tmpl.Source = SourceAPI
	}

	return &tmpl, nil
}

// revisionFields is the content that identifies a template version
func revisionFields(t *types.Template) map[string]interface{} {
	return map[string]interface{}{
		"tag":    t.Tag,
		"kind":   t.Kind,
		"title":  t.Title,
		"body":   t.Body,
		"layers": t.Layers,
		"ttl":    t.TTL,
		"script": t.Script,
		"meta":   t.Meta,
	}
}

// Construct builds a new behavior for tag. It fails without side effects when
// the tag is unknown or the template does not allow layer.
func (r *Registry) Construct(tag string, layer types.Layer) (ui.Behavior, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[tag]
	var builder Builder
	if ok {
		builder = r.builders[tmpl.Kind]
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, tag)
	}
	if !tmpl.Allows(layer) {
		return nil, fmt.Errorf("%w: %s on %s", ErrLayerNotAllowed, tag, layer)
	}
	if builder == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, tmpl.Kind)
	}

	return builder.Build(tmpl, layer)
}

// Get returns a copy of the template registered for tag
func (r *Registry) Get(tag string) (*types.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.templates[tag]
	if !ok {
		return nil, false
	}
	cp := *tmpl
	return &cp, true
}

// List returns every template sorted by tag
func (r *Registry) List() []types.Template {
	r.mu.RLock()
	out := make([]types.Template, 0, len(r.templates))
	for _, tmpl := range r.templates {
		out = append(out, *tmpl)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// ListMetadata lists metadata for all templates, optionally filtered by kind
func (r *Registry) ListMetadata(kind *types.TemplateKind) []types.TemplateMetadata {
	all := r.List()
	out := make([]types.TemplateMetadata, 0, len(all))
	for i := range all {
		if kind != nil && all[i].Kind != *kind {
			continue
		}
		out = append(out, all[i].ToMetadata())
	}
	return out
}

// Unregister removes the template for tag. Live instances built from it are unaffected.
func (r *Registry) Unregister(tag string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[tag]; !ok {
		return false
	}
	delete(r.templates, tag)
	return true
}

// SyncResult reports what a catalog sync changed
type SyncResult struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
	Rejected  int `json:"rejected"`
}

// Sync replaces every template whose source lives under root with tmpls.
// Invalid templates are logged and rejected; templates from other sources are left alone.
func (r *Registry) Sync(root string, tmpls []types.Template) SyncResult {
	var res SyncResult
	prepared := make(map[string]*types.Template, len(tmpls))
	for _, tmpl := range tmpls {
		p, err := r.prepare(tmpl)
		if err != nil {
			res.Rejected++
			r.logger.Warn("Template rejected",
				zap.String("tag", tmpl.Tag),
				zap.String("source", tmpl.Source),
				zap.Error(err))
			continue
		}
		prepared[p.Tag] = p
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for tag, existing := range r.templates {
		if _, keep := prepared[tag]; keep || !underRoot(existing.Source, root) {
			continue
		}
		delete(r.templates, tag)
		res.Removed++
	}
	for tag, p := range prepared {
		existing, ok := r.templates[tag]
		switch {
		case !ok:
			res.Added++
		case existing.Revision == p.Revision:
			res.Unchanged++
			continue
		default:
			res.Updated++
		}
		r.templates[tag] = p
		r.release(p)
	}
	return res
}

// release lifts the quarantine of a script whose source was replaced
func (r *Registry) release(tmpl *types.Template) {
	if r.breakers != nil && tmpl.Kind == types.KindScript {
		r.breakers.Reset(ScriptBreakerName(tmpl.Tag))
	}
}

func underRoot(source, root string) bool {
	return source == root || strings.HasPrefix(source, strings.TrimSuffix(root, "/")+"/")
}

// Stats returns registry statistics
func (r *Registry) Stats() types.RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make(map[types.TemplateKind]int)
	var lastUpdated *time.Time
	for _, tmpl := range r.templates {
		kinds[tmpl.Kind]++
		if lastUpdated == nil || tmpl.UpdatedAt.After(*lastUpdated) {
			t := tmpl.UpdatedAt
			lastUpdated = &t
		}
	}

	return types.RegistryStats{
		TotalTemplates: len(r.templates),
		Kinds:          kinds,
		LastUpdated:    lastUpdated,
	}
}

// SourceAPI marks templates registered over HTTP
const SourceAPI = "api"
