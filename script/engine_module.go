package script

import (
	"strings"

	"github.com/d5/tengo/v2"
)

func errorObject(err error) tengo.Object {
	return &tengo.Error{Value: &tengo.String{Value: err.Error()}}
}

func handleObject(h int64) tengo.Object {
	return &tengo.Int{Value: h}
}

// buildEngineModule exposes e to scripts as the immutable "engine" map.
func buildEngineModule(e Engine) *tengo.ImmutableMap {
	funcs := map[string]tengo.CallableFunc{
		"create_entity": func(args ...tengo.Object) (tengo.Object, error) {
			return handleObject(e.CreateEntity(objectAsString(arg(args, 0)), objectAsString(arg(args, 1)))), nil
		},
		"destroy_entity": func(args ...tengo.Object) (tengo.Object, error) {
			return boolObject(e.DestroyEntity(objectAsInt(arg(args, 0)))), nil
		},
		"find_entity": func(args ...tengo.Object) (tengo.Object, error) {
			return handleObject(e.FindEntity(objectAsString(arg(args, 0)))), nil
		},

		"create_transform": func(args ...tengo.Object) (tengo.Object, error) {
			return handleObject(e.CreateTransform(objectAsInt(arg(args, 0)), objectAsFloat(arg(args, 1)), objectAsFloat(arg(args, 2)))), nil
		},
		"position": func(args ...tengo.Object) (tengo.Object, error) {
			x, y, ok := e.Position(objectAsInt(arg(args, 0)))
			if !ok {
				return tengo.UndefinedValue, nil
			}
			return pairObject(x, y), nil
		},
		"set_position": func(args ...tengo.Object) (tengo.Object, error) {
			return boolObject(e.SetPosition(objectAsInt(arg(args, 0)), objectAsFloat(arg(args, 1)), objectAsFloat(arg(args, 2)))), nil
		},
		"set_flip": func(args ...tengo.Object) (tengo.Object, error) {
			return boolObject(e.SetFlip(objectAsInt(arg(args, 0)), objectAsBool(arg(args, 1)), objectAsBool(arg(args, 2)))), nil
		},

		"create_sprite": func(args ...tengo.Object) (tengo.Object, error) {
			h, err := e.CreateSprite(objectAsInt(arg(args, 0)), objectAsInt(arg(args, 1)), objectAsString(arg(args, 2)), int(objectAsInt(arg(args, 3))))
			if err != nil {
				return errorObject(err), nil
			}
			return handleObject(h), nil
		},
		"create_animation": func(args ...tengo.Object) (tengo.Object, error) {
			h, err := e.CreateAnimation(objectAsInt(arg(args, 0)), objectAsInt(arg(args, 1)), objectAsString(arg(args, 2)))
			if err != nil {
				return errorObject(err), nil
			}
			return handleObject(h), nil
		},
		"play_animation": func(args ...tengo.Object) (tengo.Object, error) {
			return boolObject(e.PlayAnimation(objectAsInt(arg(args, 0)), objectAsString(arg(args, 1)))), nil
		},
		"create_camera": func(args ...tengo.Object) (tengo.Object, error) {
			return handleObject(e.CreateCamera(objectAsInt(arg(args, 0)), objectAsInt(arg(args, 1)), objectAsBool(arg(args, 2)))), nil
		},

		"create_collider": func(args ...tengo.Object) (tengo.Object, error) {
			h := e.CreateCollider(
				objectAsInt(arg(args, 0)),
				objectAsInt(arg(args, 1)),
				objectAsFloat(arg(args, 2)),
				objectAsFloat(arg(args, 3)),
				objectAsFloat(arg(args, 4)),
				objectAsFloat(arg(args, 5)),
				uint64(objectAsInt(arg(args, 6))),
			)
			return handleObject(h), nil
		},
		"colliding": func(args ...tengo.Object) (tengo.Object, error) {
			return boolObject(e.Colliding(objectAsInt(arg(args, 0)))), nil
		},
		"query": func(args ...tengo.Object) (tengo.Object, error) {
			hits := e.Query(
				objectAsFloat(arg(args, 0)),
				objectAsFloat(arg(args, 1)),
				objectAsFloat(arg(args, 2)),
				objectAsFloat(arg(args, 3)),
				uint64(objectAsInt(arg(args, 4))),
			)
			out := make([]tengo.Object, 0, len(hits))
			for _, h := range hits {
				out = append(out, handleObject(h))
			}
			return &tengo.Array{Value: out}, nil
		},

		"create_physics": func(args ...tengo.Object) (tengo.Object, error) {
			return handleObject(e.CreatePhysics(objectAsInt(arg(args, 0)), objectAsInt(arg(args, 1)), objectAsInt(arg(args, 2)))), nil
		},
		"velocity": func(args ...tengo.Object) (tengo.Object, error) {
			x, y, ok := e.Velocity(objectAsInt(arg(args, 0)))
			if !ok {
				return tengo.UndefinedValue, nil
			}
			return pairObject(x, y), nil
		},
		"set_velocity": func(args ...tengo.Object) (tengo.Object, error) {
			return boolObject(e.SetVelocity(objectAsInt(arg(args, 0)), objectAsFloat(arg(args, 1)), objectAsFloat(arg(args, 2)))), nil
		},
		"set_acceleration": func(args ...tengo.Object) (tengo.Object, error) {
			return boolObject(e.SetAcceleration(objectAsInt(arg(args, 0)), objectAsFloat(arg(args, 1)), objectAsFloat(arg(args, 2)))), nil
		},
		"set_gravity": func(args ...tengo.Object) (tengo.Object, error) {
			return boolObject(e.SetGravity(objectAsInt(arg(args, 0)), objectAsFloat(arg(args, 1)), objectAsFloat(arg(args, 2)))), nil
		},
		"set_max_speed": func(args ...tengo.Object) (tengo.Object, error) {
			return boolObject(e.SetMaxSpeed(objectAsInt(arg(args, 0)), objectAsFloat(arg(args, 1)), objectAsFloat(arg(args, 2)))), nil
		},

		"bind_input": func(args ...tengo.Object) (tengo.Object, error) {
			return handleObject(e.BindInput(objectAsInt(arg(args, 0)), objectAsString(arg(args, 1)), objectAsString(arg(args, 2)))), nil
		},
		"bind_tick": func(args ...tengo.Object) (tengo.Object, error) {
			return handleObject(e.BindTick(objectAsInt(arg(args, 0)), objectAsString(arg(args, 1)))), nil
		},
		"spawn": func(args ...tengo.Object) (tengo.Object, error) {
			h, err := e.SpawnPrefab(objectAsString(arg(args, 0)), objectAsFloat(arg(args, 1)), objectAsFloat(arg(args, 2)))
			if err != nil {
				return errorObject(err), nil
			}
			return handleObject(h), nil
		},
		"log": func(args ...tengo.Object) (tengo.Object, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				parts = append(parts, objectAsString(a))
			}
			e.Log(strings.Join(parts, " "))
			return tengo.UndefinedValue, nil
		},
	}

	values := make(map[string]tengo.Object, len(funcs))
	for name, fn := range funcs {
		values[name] = &tengo.UserFunction{Name: name, Value: fn}
	}
	return &tengo.ImmutableMap{Value: values}
}
