/*
Package ports defines the driven ports (interfaces) for the Gantry engine.

These interfaces decouple the core logic from external implementations,
allowing the engine to work with various workflow sources, run stores, and
action backends.

# Key Interfaces

  - WorkflowLoader: Responsible for loading workflow definitions (directory,
    embedded catalog, or memory).
  - RunStore: Responsible for persisting Run records (file, Redis).
  - ActionRunner: Executes one opaque external step. The actions themselves
    (checkout, build, publish, analyze, hook runner) are external
    collaborators; only the invocation contract lives here.
*/
package ports
