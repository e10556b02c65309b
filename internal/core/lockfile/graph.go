package lockfile

import (
	"github.com/pion/logging"

	"github.com/nightconcept/denolock/internal/core/pkgid"
)

type nodeKind uint8

const (
	reqNode nodeKind = iota
	npmNode
	jsrNode
)

func (k nodeKind) String() string {
	switch k {
	case npmNode:
		return "npm"
	case jsrNode:
		return "jsr"
	default:
		return "specifier"
	}
}

type nodeKey struct {
	kind nodeKind
	name string
}

// packageGraph is the reference graph over the specifiers, npm and jsr
// sections. Nodes live in an arena and are addressed by index; edges point
// from a requirement to its resolved id, from an npm id to its dependency
// ids and from a jsr id to the requirements it uses.
type packageGraph struct {
	nodes []nodeKey
	edges [][]int
	index map[nodeKey]int

	// roots are requirement nodes: every specifier plus the workspace
	// requirements that were live before the change.
	roots []int

	npm        map[string]NpmPackageInfo
	jsr        map[string]JsrPackageInfo
	specifiers map[string]string

	// reached is nil until removeRootPackages ran.
	reached []bool

	log logging.LeveledLogger
}

func newPackageGraph(
	npm map[string]NpmPackageInfo,
	jsr map[string]JsrPackageInfo,
	specifiers map[string]string,
	workspaceReqs ReqSet,
	log logging.LeveledLogger,
) *packageGraph {
	g := &packageGraph{
		index:      make(map[nodeKey]int, len(npm)+len(jsr)+len(specifiers)),
		npm:        npm,
		jsr:        jsr,
		specifiers: specifiers,
		log:        log,
	}

	for req, resolved := range specifiers {
		from := g.node(reqNode, req)
		if to, ok := g.resolve(resolved); ok {
			g.edge(from, to)
		}
	}
	for id, pkg := range npm {
		from := g.node(npmNode, id)
		for _, depID := range pkg.Dependencies {
			if _, ok := npm[depID]; ok {
				g.edge(from, g.node(npmNode, depID))
			}
		}
	}
	for id, pkg := range jsr {
		from := g.node(jsrNode, id)
		for req := range pkg.Dependencies {
			// dangling requirements are ignored
			if _, ok := specifiers[req]; ok {
				g.edge(from, g.node(reqNode, req))
			}
		}
	}

	for req := range specifiers {
		g.roots = append(g.roots, g.index[nodeKey{reqNode, req}])
	}
	for req := range workspaceReqs {
		if _, ok := specifiers[req]; !ok {
			g.roots = append(g.roots, g.node(reqNode, req))
		}
	}
	return g
}

func (g *packageGraph) node(kind nodeKind, name string) int {
	key := nodeKey{kind, name}
	if idx, ok := g.index[key]; ok {
		return idx
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, key)
	g.edges = append(g.edges, nil)
	g.index[key] = idx
	return idx
}

func (g *packageGraph) edge(from, to int) {
	g.edges[from] = append(g.edges[from], to)
}

// resolve returns the node of the package a specifiers value points at, if
// that package is in the lockfile.
func (g *packageGraph) resolve(value string) (int, bool) {
	scheme, id := pkgid.Resolved(value)
	switch scheme {
	case pkgid.NpmScheme:
		if _, ok := g.npm[id]; ok {
			return g.node(npmNode, id), true
		}
	case pkgid.JsrScheme:
		if _, ok := g.jsr[id]; ok {
			return g.node(jsrNode, id), true
		}
	}
	return 0, false
}

// removeRootPackages drops the removed requirements from the root set and
// marks everything still reachable from the remaining roots.
//
// A removed requirement takes with it the requirements its jsr package
// introduced, unless they are in declared. Whatever is reachable from a
// surviving root is kept, so packages shared with a surviving root stay.
func (g *packageGraph) removeRootPackages(removed, declared ReqSet) {
	dropped := make([]bool, len(g.nodes))
	seen := make([]bool, len(g.nodes))
	var stack []int

	for req := range removed {
		if idx, ok := g.index[nodeKey{reqNode, req}]; ok && !seen[idx] {
			dropped[idx] = true
			seen[idx] = true
			stack = append(stack, idx)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.edges[n] {
			if seen[next] {
				continue
			}
			key := g.nodes[next]
			switch key.kind {
			case jsrNode:
				seen[next] = true
				stack = append(stack, next)
			case reqNode:
				if declared.Has(key.name) {
					continue
				}
				seen[next] = true
				dropped[next] = true
				stack = append(stack, next)
			case npmNode:
				// npm packages never introduce requirements
			}
		}
	}

	reached := make([]bool, len(g.nodes))
	for _, root := range g.roots {
		if !dropped[root] && !reached[root] {
			reached[root] = true
			stack = append(stack, root)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.edges[n] {
			if !reached[next] {
				reached[next] = true
				stack = append(stack, next)
			}
		}
	}
	g.reached = reached
}

func (g *packageGraph) isReached(kind nodeKind, name string) bool {
	if g.reached == nil {
		return true
	}
	idx, ok := g.index[nodeKey{kind, name}]
	return ok && g.reached[idx]
}

// populatePackages replaces the npm, jsr and specifiers sections of content
// with the entries that survived and returns how many entries were removed.
func (g *packageGraph) populatePackages(content *Content) int {
	removed := 0
	drop := func(kind nodeKind, name string) {
		removed++
		g.log.Debugf("pruned %s %s", kind, name)
	}

	npm := make(map[string]NpmPackageInfo, len(g.npm))
	for id, pkg := range g.npm {
		if g.isReached(npmNode, id) {
			npm[id] = pkg
		} else {
			drop(npmNode, id)
		}
	}
	jsr := make(map[string]JsrPackageInfo, len(g.jsr))
	for id, pkg := range g.jsr {
		if g.isReached(jsrNode, id) {
			jsr[id] = pkg
		} else {
			drop(jsrNode, id)
		}
	}
	specifiers := make(map[string]string, len(g.specifiers))
	for req, id := range g.specifiers {
		if g.isReached(reqNode, req) {
			specifiers[req] = id
		} else {
			drop(reqNode, req)
		}
	}

	content.Npm = npm
	content.Jsr = jsr
	content.Specifiers = specifiers
	return removed
}
