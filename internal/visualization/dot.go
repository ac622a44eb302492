// Package visualization renders synapse graphs in various output formats.
package visualization

import (
	"fmt"
	"strings"

	"github.com/nvandessel/spikenet/internal/topology"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// RenderDOT produces a Graphviz DOT representation of the synapse graph.
// Node positions come straight from the topology so layouts run with
// neato -n reproduce the spatial arrangement. Excitatory edges render
// solid, inhibitory edges dashed.
func RenderDOT(topo *topology.Topology) string {
	var b strings.Builder
	b.WriteString("digraph spikenet {\n")
	b.WriteString("  node [shape=point, width=0.05];\n")
	b.WriteString("  edge [arrowsize=0.4, fontsize=8];\n\n")

	for i, pos := range topo.Positions {
		b.WriteString(fmt.Sprintf("  n%d [pos=\"%.4f,%.4f!\"];\n", i, pos.X, pos.Y))
	}
	b.WriteString("\n")

	for _, edge := range topo.Edges() {
		style := "solid"
		if edge.Weight < 0 {
			style = "dashed"
		}
		b.WriteString(fmt.Sprintf("  n%d -> n%d [style=%s, weight=\"%.2f\", label=\"%dms\"];\n",
			edge.Source, edge.Target, style, edge.Weight, edge.Delay.Milliseconds()))
	}

	b.WriteString("}\n")
	return b.String()
}

// RenderJSON produces a JSON-ready graph representation with nodes and
// edges arrays.
func RenderJSON(topo *topology.Topology) map[string]interface{} {
	jsonNodes := make([]map[string]interface{}, 0, len(topo.Positions))
	for i, pos := range topo.Positions {
		jsonNodes = append(jsonNodes, map[string]interface{}{
			"id": i,
			"x":  pos.X,
			"y":  pos.Y,
		})
	}

	edges := topo.Edges()
	jsonEdges := make([]map[string]interface{}, 0, len(edges))
	for _, edge := range edges {
		jsonEdges = append(jsonEdges, map[string]interface{}{
			"source":   edge.Source,
			"target":   edge.Target,
			"weight":   edge.Weight,
			"delay_ms": edge.Delay.Milliseconds(),
		})
	}

	return map[string]interface{}{
		"nodes":      jsonNodes,
		"edges":      jsonEdges,
		"node_count": len(jsonNodes),
		"edge_count": len(jsonEdges),
	}
}
