package component

// InputFunc receives the dispatched event name and its parameter (a key code
// for keydown/keyup).
type InputFunc func(name string, param int64) error

type Input struct {
	Name     string
	Callback InputFunc
}

// InputEvent is queued by the presentation layer and dispatched during the
// input stage.
type InputEvent struct {
	Name  string
	Param int64
}

// InputAlias re-dispatches Event with Param under Name.
type InputAlias struct {
	Name  string
	Event string
	Param int64
}
