// Package lightpillar renders an animated, ray-marched volumetric "light
// pillar" into a rectangular region, on top of [Ebitengine].
//
// The effect owns a render surface sized to its container in device pixels,
// a fragment program evaluating the pillar field per pixel, and a frame loop
// that advances effect time by a fixed step each tick. It can follow the
// pointer, tracks container resizes, and releases everything on Destroy.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	cfg := lightpillar.DefaultConfig()
//	cfg.Interactive = true
//	lightpillar.Run(cfg, lightpillar.RunConfig{
//		Title: "Light Pillar", Width: 640, Height: 480,
//	})
//
// To embed the effect in your own [ebiten.Game], create a [WindowHost],
// pass its loop to [New], call [WindowHost.Update] from your Update and
// [Effect.Present] from your Draw.
//
// # Containers and devices
//
// An effect is bound to a [Container], which reports its content box and
// device pixel ratio, delivers pointer and viewport notifications, and
// accepts a background color. [WindowHost] adapts the Ebitengine window and
// [HeadlessHost] is an in-memory container for tests and offscreen
// rendering.
//
// Pixels are produced by a [Device]. [EbitenDevice] compiles the field as a
// Kage shader; [SoftwareDevice] evaluates the same field on the CPU with
// [Uniforms.Shade]. If the device fails its probe or the surface cannot be
// allocated, [New] still returns an [Effect]: the container background is
// made transparent and nothing else is created. Only configuration errors
// ([*ConfigError]) are returned.
//
// # Scheduling
//
// Ticks and debounced resizes run on a [Loop], a single-threaded task queue
// the host pumps once per frame. [Headless] pairs a loop with a
// [ManualClock] so frames are deterministic, and runs JSON [Script]s of
// pointer, resize and snapshot steps.
//
// [Ebitengine]: https://ebitengine.org
package lightpillar
