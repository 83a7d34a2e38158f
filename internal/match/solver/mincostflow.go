// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package solver

import (
	"container/heap"
	"math"
)

// MinCostFlow solves the assignment as a minimum-cost flow over
// source → users → opportunities → sink, shipping one unit per user.
type MinCostFlow struct{}

// Name identifies the solver.
func (m *MinCostFlow) Name() string { return "mincostflow" }

// Solve implements Solver. A non-optimal internal outcome returns the
// best-effort result; callers wanting the greedy degradation path use
// the fallback wrapper from New.
func (m *MinCostFlow) Solve(p Problem) ([]Pair, []string) {
	assignments, unassigned, _ := m.solve(p)
	return assignments, unassigned
}

// solve reports ok=false when the flow network could not ship one unit
// per user, which signals the caller to degrade to greedy.
func (m *MinCostFlow) solve(p Problem) ([]Pair, []string, bool) {
	numUsers := len(p.Users)
	numOpps := len(p.Opps)
	if numUsers == 0 {
		return nil, nil, true
	}

	maxScore := maxMatrixScore(p.Scores)
	unassignedCost := costFor(0.0, maxScore)

	// Node layout: 0 = source, 1..U = users, U+1..U+O = opps, last = sink.
	source := 0
	userOffset := 1
	oppOffset := 1 + numUsers
	sink := 1 + numUsers + numOpps

	g := newFlowGraph(sink + 1)

	oppIndex := make(map[string]int, numOpps)
	for j, oppID := range p.Opps {
		oppIndex[oppID] = j
	}

	for i := range p.Users {
		g.addEdge(source, userOffset+i, 1, 0)
	}

	// userArcStart[i] marks where user i's opportunity arcs begin so the
	// assignment can be decoded without scanning the whole edge list.
	userArcStart := make([]int, numUsers)
	for i, userID := range p.Users {
		userArcStart[i] = len(g.edges)
		row := p.Scores[userID]
		for j, oppID := range p.Opps {
			score, ok := row[oppID]
			if !ok {
				continue
			}
			g.addEdge(userOffset+i, oppOffset+j, 1, costFor(score, maxScore))
		}
		// Overflow arc: being unassigned costs the same as a zero score,
		// so poor fits are never forced.
		g.addEdge(userOffset+i, sink, 1, unassignedCost)
	}

	for j, oppID := range p.Opps {
		cap := p.Capacities[oppID]
		if cap <= 0 {
			continue
		}
		g.addEdge(oppOffset+j, sink, cap, 0)
	}

	shipped := g.minCostFlow(source, sink, numUsers)
	if shipped != numUsers {
		return nil, nil, false
	}

	assignments := make([]Pair, 0, numUsers)
	assignedUsers := make(map[string]struct{}, numUsers)
	for i, userID := range p.Users {
		end := len(g.edges)
		if i+1 < numUsers {
			end = userArcStart[i+1]
		}
		for e := userArcStart[i]; e < end; e += 2 {
			edge := &g.edges[e]
			if edge.flow != 1 || edge.to == sink {
				continue
			}
			oppID := p.Opps[edge.to-oppOffset]
			assignments = append(assignments, Pair{UserID: userID, OppID: oppID})
			assignedUsers[userID] = struct{}{}
			break
		}
	}

	unassigned := make([]string, 0)
	for _, userID := range p.Users {
		if _, ok := assignedUsers[userID]; !ok {
			unassigned = append(unassigned, userID)
		}
	}
	return assignments, unassigned, true
}

// flowEdge is one directed arc; edges[i] and edges[i^1] form a
// forward/reverse residual pair.
type flowEdge struct {
	to   int
	cap  int
	cost int
	flow int
}

// flowGraph is an adjacency-list residual network.
type flowGraph struct {
	edges []flowEdge
	adj   [][]int
}

func newFlowGraph(n int) *flowGraph {
	return &flowGraph{adj: make([][]int, n)}
}

// addEdge appends a forward arc and its zero-capacity reverse.
func (g *flowGraph) addEdge(from, to, cap, cost int) {
	g.adj[from] = append(g.adj[from], len(g.edges))
	g.edges = append(g.edges, flowEdge{to: to, cap: cap, cost: cost})
	g.adj[to] = append(g.adj[to], len(g.edges))
	g.edges = append(g.edges, flowEdge{to: from, cap: 0, cost: -cost})
}

// minCostFlow ships up to want units from source to sink by successive
// shortest paths with Johnson potentials, and returns the units shipped.
// All original arc costs are non-negative, so Dijkstra applies from the
// first iteration.
func (g *flowGraph) minCostFlow(source, sink, want int) int {
	n := len(g.adj)
	potential := make([]int, n)
	dist := make([]int, n)
	prevEdge := make([]int, n)
	shipped := 0

	for shipped < want {
		for i := range dist {
			dist[i] = math.MaxInt
			prevEdge[i] = -1
		}
		dist[source] = 0

		pq := &nodeHeap{{node: source, dist: 0}}
		for pq.Len() > 0 {
			cur := heap.Pop(pq).(nodeDist)
			if cur.dist > dist[cur.node] {
				continue
			}
			for _, eid := range g.adj[cur.node] {
				edge := &g.edges[eid]
				if edge.cap-edge.flow <= 0 {
					continue
				}
				reduced := edge.cost + potential[cur.node] - potential[edge.to]
				next := cur.dist + reduced
				if next < dist[edge.to] {
					dist[edge.to] = next
					prevEdge[edge.to] = eid
					heap.Push(pq, nodeDist{node: edge.to, dist: next})
				}
			}
		}

		if dist[sink] == math.MaxInt {
			break
		}

		for i := range potential {
			if dist[i] < math.MaxInt {
				potential[i] += dist[i]
			}
		}

		// Bottleneck along the augmenting path.
		push := math.MaxInt
		for v := sink; v != source; {
			eid := prevEdge[v]
			edge := &g.edges[eid]
			if residual := edge.cap - edge.flow; residual < push {
				push = residual
			}
			v = g.edges[eid^1].to
		}
		if remaining := want - shipped; push > remaining {
			push = remaining
		}

		for v := sink; v != source; {
			eid := prevEdge[v]
			g.edges[eid].flow += push
			g.edges[eid^1].flow -= push
			v = g.edges[eid^1].to
		}
		shipped += push
	}

	return shipped
}

// nodeDist is a heap entry for Dijkstra.
type nodeDist struct {
	node int
	dist int
}

// nodeHeap orders by distance, breaking ties by node index so the
// search order (and therefore tie-breaking between equal-cost flows) is
// deterministic.
type nodeHeap []nodeDist

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].node < h[j].node
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(nodeDist)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
