/*
Package schema validates workflow definitions against structural and
hardening rules before the engine will run them.

The hardening rules encode the repository's security posture as
machine-checkable invariants:

  - The workflow-level permission block grants no more than contents: read.
    Elevated scopes (id-token: write, security-events: write, actions: read)
    may only appear on the specific job that needs them.
  - Every external action reference is pinned to a full commit hash, never a
    mutable tag.
  - The first step of every job is the environment-hardening action, so
    egress auditing is in place before anything else runs.
  - Cron expressions on schedule triggers must parse.

Failures are collected and reported together via AggregateError rather than
stopping at the first violation.
*/
package schema
