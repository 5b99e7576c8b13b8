package ecs

// Query returns the live entities holding every listed kind.
func Query(w *World, kinds ...AnyKind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	base := smallest(w, kinds...)
	out := make([]Entity, 0, len(base))
	for _, e := range base {
		if !w.entities.isAlive(e) {
			continue
		}
		match := true
		for _, k := range kinds {
			if !w.store(k.ID(), false).Has(e) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}

// smallest returns a copy of the entity list of the least populated store so
// intersections iterate as few entities as possible.
func smallest(w *World, kinds ...AnyKind) []Entity {
	var best *SparseSet
	for _, k := range kinds {
		s := w.store(k.ID(), false)
		if s == nil {
			return nil
		}
		if best == nil || s.Len() < best.Len() {
			best = s
		}
	}
	return best.Entities()
}
