/*
Package domain contains the core domain models for the Gantry engine.

It defines the fundamental entities of the pipeline system, such as Workflows,
Triggers, Permission grants, and the Run lifecycle. This package is kept pure
and free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Workflow: A named, independently triggerable job sequence (trigger set,
    default permissions, ordered jobs).
  - Event: The trigger surface (push, pull request, merge group, schedule,
    manual dispatch) that the platform delivers to the engine.
  - Permissions: Least-privilege scope grants, elevated only at job level.
  - Run / JobRun / StepRun: The runtime snapshot of one execution, including
    the fail-fast step conclusions.
*/
package domain
