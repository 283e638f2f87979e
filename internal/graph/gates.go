package graph

// GateNetwork returns every system reachable from origin using only gate
// links (fixed gates, plus player gates when playerGates is true), origin
// included. Each system appears once. The walk uses an explicit work list, so
// stack depth does not grow with the size of the network.
func (u *Universe) GateNetwork(origin SystemID, playerGates bool) ([]SystemID, error) {
	if _, err := u.System(origin); err != nil {
		return nil, err
	}

	seen := map[SystemID]bool{origin: true}
	network := make([]SystemID, 0, 16)
	work := []SystemID{origin}
	for len(work) > 0 {
		current := work[len(work)-1]
		work = work[:len(work)-1]
		network = append(network, current)

		s, ok := u.Systems[current]
		if !ok {
			continue
		}
		for _, l := range s.Links {
			// Gates sort before jumps.
			if !l.Kind.IsGate() {
				break
			}
			if l.Kind == PlayerGate && !playerGates {
				continue
			}
			if !seen[l.Target] {
				seen[l.Target] = true
				work = append(work, l.Target)
			}
		}
	}
	return network, nil
}

// RegionsOf returns the distinct regions of the given systems.
func (u *Universe) RegionsOf(ids []SystemID) map[RegionID]bool {
	regions := make(map[RegionID]bool)
	for _, id := range ids {
		if s, ok := u.Systems[id]; ok {
			regions[s.RegionID] = true
		}
	}
	return regions
}
