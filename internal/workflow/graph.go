// Package workflow implements small state-graph workflows: named nodes
// transform a shared state map, plain edges and conditional edges
// decide what runs next, and a compiled graph executes from the entry
// point until it reaches END.
package workflow

import (
	"context"
	"fmt"
	"maps"

	"github.com/dkoh12/agenticai/internal/events"
)

// END is the terminal pseudo-node. Routing to END stops execution.
const END = "END"

// defaultMaxSteps guards against cycles that never reach END.
const defaultMaxSteps = 25

// State is the shared workflow state passed between nodes.
type State = map[string]any

// NodeFunc transforms the state. It receives a copy and returns the
// state the next node should see.
type NodeFunc func(ctx context.Context, state State) (State, error)

// RouteFunc inspects the state and names the next node (or END).
type RouteFunc func(ctx context.Context, state State) string

// StateGraph is a workflow under construction. Build it with AddNode,
// AddEdge, AddConditionalEdge, and SetEntryPoint, then Compile.
type StateGraph struct {
	nodes       map[string]NodeFunc
	edges       map[string]string
	conditional map[string]RouteFunc
	entryPoint  string
}

// NewStateGraph creates an empty graph.
func NewStateGraph() *StateGraph {
	return &StateGraph{
		nodes:       make(map[string]NodeFunc),
		edges:       make(map[string]string),
		conditional: make(map[string]RouteFunc),
	}
}

// AddNode registers a named node.
func (g *StateGraph) AddNode(name string, fn NodeFunc) *StateGraph {
	g.nodes[name] = fn
	return g
}

// AddEdge routes unconditionally from one node to another (or to END).
func (g *StateGraph) AddEdge(from, to string) *StateGraph {
	g.edges[from] = to
	return g
}

// AddConditionalEdge routes from a node using the given function. The
// function's result must be a node name or END.
func (g *StateGraph) AddConditionalEdge(from string, route RouteFunc) *StateGraph {
	g.conditional[from] = route
	return g
}

// SetEntryPoint names the node execution starts from.
func (g *StateGraph) SetEntryPoint(name string) *StateGraph {
	g.entryPoint = name
	return g
}

// Compile validates the graph and returns a Runnable. It is an error
// to have no entry point, an entry point or edge referring to an
// unknown node, or a node with no way out.
func (g *StateGraph) Compile() (*Runnable, error) {
	if g.entryPoint == "" {
		return nil, fmt.Errorf("workflow: no entry point set")
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("workflow: entry point %q is not a node", g.entryPoint)
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("workflow: edge from unknown node %q", from)
		}
		if to != END {
			if _, ok := g.nodes[to]; !ok {
				return nil, fmt.Errorf("workflow: edge %q -> %q targets unknown node", from, to)
			}
		}
	}
	for from := range g.conditional {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("workflow: conditional edge from unknown node %q", from)
		}
	}
	for name := range g.nodes {
		_, plain := g.edges[name]
		_, cond := g.conditional[name]
		if !plain && !cond {
			return nil, fmt.Errorf("workflow: node %q has no outgoing edge", name)
		}
	}
	return &Runnable{graph: g, MaxSteps: defaultMaxSteps}, nil
}

// Runnable is a compiled workflow.
type Runnable struct {
	graph *StateGraph

	// MaxSteps bounds the number of node executions per Invoke.
	MaxSteps int

	// Bus, when set, receives node lifecycle events.
	Bus *events.Bus
}

// Invoke runs the workflow from the entry point and returns the final
// state. The initial state is not mutated.
func (r *Runnable) Invoke(ctx context.Context, initial State) (State, error) {
	state := State{}
	maps.Copy(state, initial)

	maxSteps := r.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	current := r.graph.entryPoint
	for step := 0; step < maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		node := r.graph.nodes[current]
		r.Bus.Publish(events.Event{
			Source: events.SourceWorkflow,
			Kind:   events.KindNodeStart,
			Data:   map[string]any{"node": current},
		})

		next, err := node(ctx, state)
		if err != nil {
			return state, fmt.Errorf("workflow node %q: %w", current, err)
		}
		state = next

		target := r.route(ctx, current, state)
		r.Bus.Publish(events.Event{
			Source: events.SourceWorkflow,
			Kind:   events.KindNodeComplete,
			Data:   map[string]any{"node": current, "next": target},
		})

		if target == END {
			return state, nil
		}
		if _, ok := r.graph.nodes[target]; !ok {
			return state, fmt.Errorf("workflow: node %q routed to unknown node %q", current, target)
		}
		current = target
	}
	return state, fmt.Errorf("workflow: exceeded %d steps without reaching END", maxSteps)
}

func (r *Runnable) route(ctx context.Context, from string, state State) string {
	if route, ok := r.graph.conditional[from]; ok {
		return route(ctx, state)
	}
	return r.graph.edges[from]
}
