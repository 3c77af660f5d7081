package plan

// ReadyIDs returns the IDs of nodes that are pending and whose dependencies
// have all succeeded. Nodes downstream of a failed or skipped dependency are
// never ready; the foreman cascade-skips them instead.
func (p *Plan) ReadyIDs() []string {
	succeeded := make(map[string]bool, len(p.Nodes))
	for i := range p.Nodes {
		if p.Nodes[i].Status == NodeStatusSucceeded {
			succeeded[p.Nodes[i].ID] = true
		}
	}

	var ready []string
	for i := range p.Nodes {
		if p.Nodes[i].Status != NodeStatusPending {
			continue
		}
		satisfied := true
		for _, dep := range p.Nodes[i].DependsOn {
			if !succeeded[dep] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, p.Nodes[i].ID)
		}
	}
	return ready
}

// RunningIDs returns the IDs of nodes currently running.
func (p *Plan) RunningIDs() []string {
	var running []string
	for i := range p.Nodes {
		if p.Nodes[i].Status == NodeStatusRunning {
			running = append(running, p.Nodes[i].ID)
		}
	}
	return running
}

// AllTerminal returns true if every node is in a terminal state.
func (p *Plan) AllTerminal() bool {
	for i := range p.Nodes {
		if !p.Nodes[i].Status.IsTerminal() {
			return false
		}
	}
	return true
}

// Dependents returns the IDs of all nodes that depend on the given node,
// directly or transitively.
func (p *Plan) Dependents(id string) []string {
	direct := make(map[string][]string, len(p.Nodes))
	for i := range p.Nodes {
		for _, dep := range p.Nodes[i].DependsOn {
			direct[dep] = append(direct[dep], p.Nodes[i].ID)
		}
	}

	seen := make(map[string]bool)
	queue := append([]string(nil), direct[id]...)
	var out []string
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, direct[next]...)
	}
	return out
}

// CascadeSkip marks every non-terminal dependent of the given node as skipped.
// Used when a node fails fatally or is skipped, so execution never proceeds
// on corrupted or absent inputs.
func (p *Plan) CascadeSkip(id string, reason SkipReason) []string {
	var skipped []string
	for _, depID := range p.Dependents(id) {
		n := p.Node(depID)
		if n == nil || n.Status.IsTerminal() {
			continue
		}
		n.Status = NodeStatusSkipped
		n.Skip = reason
		skipped = append(skipped, depID)
	}
	return skipped
}
