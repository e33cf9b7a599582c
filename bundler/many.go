package bundler

import (
	"context"
	"fmt"
	"strings"

	"github.com/erraggy/oasbundle/internal/naming"
	"github.com/erraggy/oasbundle/internal/pathutil"
	"github.com/erraggy/oasbundle/node"
	"github.com/erraggy/oasbundle/oaserrors"
	"github.com/erraggy/oasbundle/parser"
	"github.com/erraggy/oasbundle/resolver"
)

// BundleMany merges the documents at locations into one OpenAPI document
// and bundles it. Input options (WithFilePath, WithBytes, WithDocument) are
// rejected; every other option applies.
//
// Each input is given a prefix derived from its file name ("pets.yaml"
// gives "pets"; a second "pets.yaml" gives "pets_2"). Components are copied
// as "<prefix>_<name>", operationIds become "<prefix>_<operationId>", a tag
// already defined by an earlier input becomes "<prefix>_<tag>", and a path
// already defined by an earlier input moves to "/<prefix>/<path>". The first
// "openapi" (else "swagger") version wins, info fields are taken from the
// first input that sets them and servers are de-duplicated.
func BundleMany(ctx context.Context, locations []string, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("bundler: invalid options: %w", err)
	}
	if cfg.filePath != nil || cfg.bytes != nil || cfg.document != nil {
		return nil, fmt.Errorf("bundler: invalid options: %w", &oaserrors.ConfigError{
			Option:  "input",
			Message: "BundleMany takes its inputs as locations",
		})
	}
	return cfg.bundler().BundleMany(ctx, locations)
}

// BundleMany merges the documents at locations into one OpenAPI document
// and bundles it. See the package-level BundleMany.
func (b *Bundler) BundleMany(ctx context.Context, locations []string) (*Result, error) {
	if len(locations) == 0 {
		return nil, &oaserrors.ConfigError{Option: "locations", Message: "at least one input is required"}
	}

	inputs := make([]*loaded, 0, len(locations))
	var errs []error
	for _, location := range locations {
		l, err := b.load(ctx, source{location: location})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		inputs = append(inputs, l)
	}
	if err := oaserrors.NewErrorGroup(errs...); err != nil {
		return nil, err
	}

	m := newMerger(inputs)
	root := &loaded{
		doc:      m.merge(),
		location: resolver.SyntheticRoot(dirOf(inputs[0].location)),
		pathType: resolver.PathTypeSynthesized,
		format:   inputs[0].format,
	}
	seed := make(map[string]*node.Node, len(inputs))
	for _, in := range inputs {
		root.loadTime += in.loadTime
		seed[in.location] = in.doc
	}

	parser.OrNop(b.Logger).Debug("merged inputs",
		"inputs", len(inputs),
		"paths", root.doc.Get("paths").Len(),
		"root", root.location,
	)

	result, err := b.run(ctx, root, seed, m.basenames)
	if err != nil {
		return nil, err
	}
	bundled := result.StructuredWarnings
	result.StructuredWarnings, result.Warnings = nil, nil
	result.addWarnings(m.warnings...)
	result.addWarnings(bundled...)
	return result, nil
}

// mergeInput is one input of a merge with its prefix and the internal
// references it defines.
type mergeInput struct {
	*loaded
	prefix string
	// refMap maps "#/components/<section>/<name>" to the merged pointer.
	refMap map[string]string
	// tagMap maps a tag name to its merged name.
	tagMap map[string]string
}

// merger builds one OpenAPI root from several inputs.
type merger struct {
	inputs []*mergeInput
	// byLocation finds an input from the target of a reference.
	byLocation map[string]*mergeInput

	merged     *node.Node
	paths      *node.Node
	components *node.Node
	tags       *node.Node
	tagNames   map[string]bool
	opIDs      *naming.Allocator

	// basenames maps an input location to its prefix, for hoisted names.
	basenames map[string]string
	warnings  Warnings
}

func newMerger(inputs []*loaded) *merger {
	m := &merger{
		byLocation: make(map[string]*mergeInput, len(inputs)),
		tagNames:   make(map[string]bool),
		opIDs:      naming.NewAllocator(),
		basenames:  make(map[string]string, len(inputs)),
	}
	prefixes := naming.NewAllocator()
	for _, l := range inputs {
		in := &mergeInput{
			loaded: l,
			prefix: prefixes.Allocate(naming.BaseName(l.location)),
			refMap: make(map[string]string),
			tagMap: make(map[string]string),
		}
		m.inputs = append(m.inputs, in)
		if _, ok := m.byLocation[l.location]; !ok {
			m.byLocation[l.location] = in
			m.basenames[l.location] = in.prefix
		}
	}
	return m
}

// merge returns the merged root. Component and definition names of every
// input are mapped before any value is copied, so references between
// inputs land on the merged names.
func (m *merger) merge() *node.Node {
	m.merged = node.NewMap()
	m.mergeVersion()
	m.mergeInfo()
	m.mergeServers()

	m.paths = node.NewMap()
	m.merged.Set("paths", m.paths)
	m.components = node.NewMap()
	m.merged.Set("components", m.components)
	for _, sec := range pathutil.ComponentSections {
		m.components.Set(sec, node.NewMap())
	}
	m.tags = node.NewSequence()

	for _, in := range m.inputs {
		m.mapComponents(in)
	}
	for _, in := range m.inputs {
		m.mergeTags(in)
		m.copyComponents(in)
		m.copyPaths(in)
	}

	if m.tags.Len() > 0 {
		m.merged.Set("tags", m.tags)
	}
	for _, sec := range pathutil.ComponentSections {
		if m.components.Get(sec).Len() == 0 {
			m.components.Delete(sec)
		}
	}
	if m.components.Len() == 0 {
		m.merged.Delete("components")
	}
	return m.merged
}

func (m *merger) mergeVersion() {
	var openapi, swagger string
	for _, in := range m.inputs {
		if s, ok := in.doc.Get("openapi").Str(); ok && openapi == "" {
			openapi = s
		}
		if s, ok := in.doc.Get("swagger").Str(); ok && swagger == "" {
			swagger = s
		}
	}
	switch {
	case openapi != "":
		m.merged.Set("openapi", node.NewString(openapi))
	case swagger != "":
		m.merged.Set("swagger", node.NewString(swagger))
	}
}

// mergeInfo takes each info field from the first input that sets it.
func (m *merger) mergeInfo() {
	info := node.NewMap()
	for _, in := range m.inputs {
		src := in.doc.Get("info")
		if !src.IsMap() {
			continue
		}
		for _, k := range src.Keys() {
			if v := src.Get(k); !info.Has(k) && !v.IsNull() {
				info.Set(k, v.DeepCopy())
			}
		}
	}
	if info.Len() > 0 {
		m.merged.Set("info", info)
	}
}

// mergeServers keeps the first server of each url and description pair.
func (m *merger) mergeServers() {
	servers := node.NewSequence()
	seen := make(map[string]bool)
	for _, in := range m.inputs {
		for _, srv := range in.doc.Get("servers").Items() {
			if !srv.IsMap() {
				continue
			}
			u, _ := srv.Get("url").Str()
			d, _ := srv.Get("description").Str()
			if key := u + "|" + d; !seen[key] {
				seen[key] = true
				servers.Append(srv.DeepCopy())
			}
		}
	}
	if servers.Len() > 0 {
		m.merged.Set("servers", servers)
	}
}

// mapComponents records the merged pointer of every component and
// definition of in. Definitions become schemas.
func (m *merger) mapComponents(in *mergeInput) {
	components := in.doc.Get("components")
	for _, sec := range pathutil.ComponentSections {
		for _, name := range components.Get(sec).Keys() {
			in.refMap[pathutil.ComponentRef(sec, name)] = pathutil.ComponentRef(sec, in.prefixed(name))
		}
	}
	for _, name := range in.doc.Get("definitions").Keys() {
		schema := pathutil.SchemaRef(name)
		if _, ok := in.refMap[schema]; !ok {
			in.refMap[schema] = pathutil.SchemaRef(in.prefixed(name))
		}
	}
}

func (m *merger) mergeTags(in *mergeInput) {
	for _, t := range in.doc.Get("tags").Items() {
		name, ok := t.Get("name").Str()
		if !t.IsMap() || !ok {
			continue
		}
		final := name
		if m.tagNames[name] {
			final = in.prefixed(name)
			m.warnings = append(m.warnings, newTagRenamedWarning(name, final, in.location))
		}
		m.tagNames[final] = true
		in.tagMap[name] = final

		if !m.hasTag(final) {
			tag := t.DeepCopy()
			tag.Set("name", node.NewString(final))
			m.tags.Append(tag)
		}
	}
}

func (m *merger) hasTag(name string) bool {
	for _, t := range m.tags.Items() {
		if s, _ := t.Get("name").Str(); s == name {
			return true
		}
	}
	return false
}

func (m *merger) copyComponents(in *mergeInput) {
	components := in.doc.Get("components")
	for _, sec := range pathutil.ComponentSections {
		group := components.Get(sec)
		target := m.components.Get(sec)
		for _, name := range group.Keys() {
			target.Set(in.prefixed(name), m.rewriter(in).clone(group.Get(name)))
		}
	}

	schemas := m.components.Get("schemas")
	defs := in.doc.Get("definitions")
	for _, name := range defs.Keys() {
		if !schemas.Has(in.prefixed(name)) {
			schemas.Set(in.prefixed(name), m.rewriter(in).clone(defs.Get(name)))
		}
	}
}

func (m *merger) copyPaths(in *mergeInput) {
	paths := in.doc.Get("paths")
	for _, p := range paths.Keys() {
		target := p
		if m.paths.Has(p) {
			target = "/" + in.prefix + "/" + strings.TrimPrefix(p, "/")
			m.warnings = append(m.warnings, newPathRelocatedWarning(p, target, in.location))
		}
		m.paths.Set(target, m.rewriter(in).clone(paths.Get(p)))
	}
}

func (m *merger) rewriter(in *mergeInput) *rewriter {
	return &rewriter{m: m, in: in, seen: make(map[*node.Node]*node.Node)}
}

func (in *mergeInput) prefixed(name string) string {
	return in.prefix + "_" + name
}

// rewriter deep-copies a value of one input while rewriting its
// references, tags and operationIds for the merged document.
type rewriter struct {
	m    *merger
	in   *mergeInput
	seen map[*node.Node]*node.Node
}

func (w *rewriter) clone(n *node.Node) *node.Node {
	if c, ok := w.seen[n]; ok {
		return c
	}

	switch {
	case n.IsSequence():
		c := node.NewSequence()
		w.seen[n] = c
		for _, item := range n.Items() {
			c.Append(w.clone(item))
		}
		return c
	case n.IsMap():
		c := node.NewMap()
		w.seen[n] = c
		for _, k := range n.Keys() {
			c.Set(k, w.member(k, n.Get(k)))
		}
		return c
	default:
		return n.ShallowCopy()
	}
}

// member returns the copy of the map member k with value v.
func (w *rewriter) member(k string, v *node.Node) *node.Node {
	switch k {
	case pathutil.RefKey:
		if s, ok := v.Str(); ok {
			return node.NewString(w.rewriteRef(s))
		}
	case "operationId":
		if s, ok := v.Str(); ok {
			return node.NewString(w.m.opIDs.Allocate(w.in.prefixed(s)))
		}
	case "tags":
		if names, ok := stringItems(v); ok {
			out := node.NewSequence()
			for _, name := range names {
				if mapped, ok := w.in.tagMap[name]; ok {
					name = mapped
				}
				out.Append(node.NewString(name))
			}
			return out
		}
	}
	return w.clone(v)
}

// rewriteRef maps local component references to the merged names and makes
// relative external references absolute. An external reference into a
// component of another input is mapped to that input's merged name.
func (w *rewriter) rewriteRef(ref string) string {
	if strings.HasPrefix(ref, "#") {
		return mapLocalRef(ref, w.in.refMap)
	}
	if parser.IsURL(ref) || strings.HasPrefix(ref, "file:") {
		return ref
	}

	target := resolver.Locate(w.in.location, ref)
	if other, ok := w.m.byLocation[pathutil.StripHash(target)]; ok {
		if mapped := mapLocalRef(pathutil.HashOf(target), other.refMap); mapped != pathutil.HashOf(target) {
			return mapped
		}
	}
	return target
}

// mapLocalRef rewrites "#/components/<section>/<name>..." and
// "#/definitions/<name>..." through refMap, keeping any trailing tokens.
func mapLocalRef(ref string, refMap map[string]string) string {
	if rest, ok := strings.CutPrefix(ref, pathutil.RefPrefixComponents); ok {
		parts := strings.SplitN(rest, "/", 3)
		if len(parts) >= 2 {
			if mapped, ok := refMap[pathutil.RefPrefixComponents+parts[0]+"/"+parts[1]]; ok {
				if len(parts) == 3 {
					return mapped + "/" + parts[2]
				}
				return mapped
			}
		}
	}
	if rest, ok := strings.CutPrefix(ref, pathutil.RefPrefixDefinitions); ok {
		name, tail, found := strings.Cut(rest, "/")
		if mapped, ok := refMap[pathutil.RefPrefixSchemas+name]; ok {
			if found {
				return mapped + "/" + tail
			}
			return mapped
		}
	}
	return ref
}

func stringItems(n *node.Node) ([]string, bool) {
	if !n.IsSequence() {
		return nil, false
	}
	out := make([]string, 0, n.Len())
	for _, item := range n.Items() {
		s, ok := item.Str()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
