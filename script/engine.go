package script

// Engine is the surface scripts drive. Records are passed as int64 handles;
// 0 is never a valid handle. Records created with a non-zero entity are
// released when that entity is destroyed.
type Engine interface {
	CreateEntity(typ, name string) int64
	DestroyEntity(entity int64) bool
	FindEntity(name string) int64

	CreateTransform(entity int64, x, y float64) int64
	Position(transform int64) (x, y float64, ok bool)
	SetPosition(transform int64, x, y float64) bool
	SetFlip(transform int64, flipH, flipV bool) bool

	CreateSprite(entity, transform int64, file string, layer int) (int64, error)
	CreateAnimation(entity, sprite int64, file string) (int64, error)
	PlayAnimation(animation int64, name string) bool
	CreateCamera(entity, transform int64, centered bool) int64

	CreateCollider(entity, transform int64, x, y, w, h float64, mask uint64) int64
	Colliding(collider int64) bool
	Query(x, y, w, h float64, mask uint64) []int64

	CreatePhysics(entity, transform, collider int64) int64
	Velocity(physics int64) (x, y float64, ok bool)
	SetVelocity(physics int64, x, y float64) bool
	SetAcceleration(physics int64, x, y float64) bool
	SetGravity(physics int64, x, y float64) bool
	SetMaxSpeed(physics int64, x, y float64) bool

	// BindInput calls the script handler when event fires.
	BindInput(entity int64, event, handler string) int64
	// BindTick calls the script handler every update.
	BindTick(entity int64, handler string) int64

	SpawnPrefab(name string, x, y float64) (int64, error)
	Log(msg string)
}
