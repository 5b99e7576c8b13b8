package component

// Active is the engine-visibility flag. Entities without it count as active;
// an inactive parent hides its whole subtree.
type Active struct {
	Enabled bool
}

var ActiveComponent = NewComponent[Active]()
