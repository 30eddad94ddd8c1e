// Package recipe dispatches drawing operations onto scenes.
//
// A [Recipe] is a named drawing operation. Running it through a [Dispatcher]
// makes sure a scene, a grid position and one or more frames exist (creating
// or reusing them), runs the recipe's drawing logic and attaches the resulting
// layers. The call returns an [Infrastructure] record describing what was
// created or reused, and a [Handle] to the layers that were added.
//
// # Call Shapes
//
// What the caller supplies in a [Target] decides the call shape:
//
//	Target{}                                  ShapeNewScene: new scene, root grid and frame
//	Target{Scene: s}                          ShapeScene: next free cell of the root's first row
//	Target{Scene: s, Position: &p}            ShapeScenePosition: stack at the given cell
//	Target{Position: &Position{Grid: g, ...}} ShapeGridPosition: scene is g.ParentScene()
//	Target{Frame: f}                          ShapeFrame: add a layer to f, no infrastructure
//
// Each recipe has an [Arity] (one frame, a rows x cols grid of facets, or a
// named set of frames) and a [Trait] that says whether the frames are wrapped
// in a new sub-layout grid. Both are known before dispatch; use
// [Dispatcher.Predict] to learn the shape of a call without running it.
//
// # Concurrency
//
// Drawing logic for the frames of one call runs concurrently and honours
// context cancellation. Layers and new content are attached on the calling
// goroutine only after every drawing function succeeded, so a failed or
// cancelled call leaves the target scene and frames untouched.
//
// # Parameters
//
// [Params] holds parameters already partitioned into scene-, frame- and
// layer-level groups. Routing raw keyword arguments into these groups is the
// caller's job.
package recipe
