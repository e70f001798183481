// Package renderloop provides exclusive, serialized access to a graphics
// context from many goroutines, and drives that context through a frame-paced
// update/render loop.
//
// The module is split into the following packages:
//
//   - [github.com/joeycumines/go-renderloop/affinity] allocates single-core
//     affinity to the OS threads that own contexts
//   - [github.com/joeycumines/go-renderloop/dispatch] runs arbitrary work, in
//     FIFO order, on a thread that holds a context current
//   - [github.com/joeycumines/go-renderloop/pacer] runs update and render
//     callbacks at a target frequency, adapting vertical sync when the loop
//     falls behind
//   - [github.com/joeycumines/go-renderloop/gfx] defines the context
//     capability, implemented by [github.com/joeycumines/go-renderloop/softgfx]
//     and [github.com/joeycumines/go-renderloop/termgfx]
//
// Every component logs via [github.com/joeycumines/logiface]. Output is
// discarded unless a logger is configured, per component or via [SetLogger].
package renderloop
