package events

import "github.com/catface996/opstack-executor-sub002/pkg/topology"

// SnapshotTopology converts a built topology into the topology_created
// payload. The API layer reuses it for synchronous execution responses.
func SnapshotTopology(topo *topology.Topology) TopologyCreatedData {
	data := TopologyCreatedData{
		GlobalSupervisorID: topo.GlobalSupervisorID,
		ExecutionMode:      string(topo.ExecutionMode),
		Teams:              make([]TeamNode, 0, len(topo.Teams)),
	}
	for _, team := range topo.Teams {
		node := TeamNode{
			TeamID:       team.ID,
			Name:         team.Name,
			SupervisorID: team.SupervisorID,
			Workers:      make([]WorkerNode, 0, len(team.Workers)),
		}
		for _, w := range team.Workers {
			node.Workers = append(node.Workers, WorkerNode{WorkerID: w.ID, Name: w.Name})
		}
		data.Teams = append(data.Teams, node)
	}
	return data
}
