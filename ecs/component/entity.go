package component

// Entity groups records created on behalf of one script object. Release
// functions run in reverse order when the entity is destroyed.
type Entity struct {
	Type    string
	Name    string
	Release []func()
}
