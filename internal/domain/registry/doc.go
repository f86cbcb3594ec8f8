// Package registry maps UI type tags to templates and builds behaviors from them.
//
// The registry is an explicit table populated at startup and at runtime. A tag
// that was never registered is a declared construction failure
// (ErrTemplateNotFound), never a lookup by naming convention.
//
// Components:
//   - Registry: Tag table, validation, sanitizing, behavior construction
//   - Builders: static (content only), toast (self-dismissing), script (JavaScript hooks)
//   - Seeder: Loads YAML, TOML and JSON catalogs from a directory or URL
//   - Watcher: Reloads a catalog directory when its files change
//
// Catalog format (YAML shown; TOML and JSON use the same fields):
//
//	templates:
//	  - tag: inventory
//	    kind: static
//	    title: Inventory
//	    layers: [panel]
//	  - tag: saved
//	    kind: toast
//	    body: Game saved
//	    ttl: 2s
//	    layers: [overlay]
//
// Example Usage:
//
//	reg := registry.New(logger, registry.Options{Delayer: scheduler})
//	seeder := registry.NewSeeder(reg, logger)
//	res, err := seeder.Seed(ctx, "./catalog")
//	manager := ui.NewManager(reg, logger)
package registry
