// Package exchange resolves conversion rates between declared currencies.
// Each declared pair is inserted as an undirected edge together with its
// reciprocal; lookups walk the graph breadth-first and multiply edge weights
// along the first path that reaches the target. BFS returns the shortest
// hop-count path, not necessarily the numerically best one — callers depend
// on that behavior.
package exchange

import (
	"fmt"

	"github.com/mintebank/minte/internal/domain"
)

// Rate is one declared conversion pair.
type Rate struct {
	From string
	To   string
	Rate float64
}

// Graph is an immutable currency conversion graph. Adjacency is kept in
// declaration order so that ties between equal-hop paths always resolve the
// same way.
type Graph struct {
	rates     map[string]map[string]float64
	neighbors map[string][]string
}

// NewGraph builds the graph from the declared pairs. The reciprocal of every
// pair is derived automatically.
func NewGraph(rates []Rate) *Graph {
	g := &Graph{
		rates:     make(map[string]map[string]float64),
		neighbors: make(map[string][]string),
	}
	for _, r := range rates {
		g.addEdge(r.From, r.To, r.Rate)
		g.addEdge(r.To, r.From, 1.0/r.Rate)
	}
	return g
}

func (g *Graph) addEdge(from, to string, rate float64) {
	if g.rates[from] == nil {
		g.rates[from] = make(map[string]float64)
	}
	if _, seen := g.rates[from][to]; !seen {
		g.neighbors[from] = append(g.neighbors[from], to)
	}
	g.rates[from][to] = rate
}

// Rate returns the conversion rate from one currency to another. It fails
// with ErrUnknownCurrency if either side was never declared and with
// ErrNoConversionPath if the currencies live in disconnected components.
func (g *Graph) Rate(from, to string) (float64, error) {
	if g.rates[from] == nil || g.rates[to] == nil {
		return 0, fmt.Errorf("%w: %s -> %s", domain.ErrUnknownCurrency, from, to)
	}
	if from == to {
		return 1.0, nil
	}

	type hop struct {
		currency string
		rate     float64
	}
	visited := map[string]bool{}
	queue := []hop{{from, 1.0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.currency == to {
			return cur.rate, nil
		}
		visited[cur.currency] = true

		for _, next := range g.neighbors[cur.currency] {
			if !visited[next] {
				queue = append(queue, hop{next, cur.rate * g.rates[cur.currency][next]})
			}
		}
	}
	return 0, fmt.Errorf("%w: %s -> %s", domain.ErrNoConversionPath, from, to)
}

// Convert translates an amount between currencies.
func (g *Graph) Convert(amount float64, from, to string) (float64, error) {
	rate, err := g.Rate(from, to)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}
