package component

// TickFunc runs once per update with the frame delta in seconds.
type TickFunc func(dt float64) error
