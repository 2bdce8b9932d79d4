/*
Package gantry is a workflow engine for hardened CI pipelines. It models
workflows the way hosted CI systems do — named pipelines with trigger
filters, least-privilege permission grants, and jobs made of sequential
steps — and executes them against an allow-list of pinned actions.

# Concept

A workflow declares when it fires (tag pushes, pull requests, merge queues,
cron schedules, manual dispatch) and what it may touch. The engine enforces
the hardening rules at load time: read-only default permissions, job-scoped
elevation only, every action pinned to a full commit hash, and an
environment-hardening step before anything else runs. This Hexagonal
Architecture keeps the core rules decoupled from adapters: workflows can
come from a directory or the embedded catalog, runs can persist to disk or
redis, and events can arrive over HTTP or from the scheduler.

# Key Features

  - Trigger matching: branch and tag globs, merge-queue filters, weekly
    schedules, manual dispatch.
  - Least privilege: workflow defaults capped at read access, write scopes
    granted per job and audited at validation time.
  - Fail-fast execution: a failed step skips the rest of its job, and a
    failed job skips the jobs behind it; matrix legs can opt out.
  - Federated publish identity: jobs granted id-token write get a
    short-lived token instead of a stored credential.

# Usage

Initialize the engine and hand it events. With no workflow directory the
embedded catalog (release publishing, security scanning, hook enforcement)
is used.

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/gantry"
		"github.com/aretw0/gantry/pkg/domain"
	)

	func main() {
		eng, err := gantry.New("")
		if err != nil {
			log.Fatal(err)
		}

		runs, err := eng.Dispatch(context.Background(), domain.Event{
			Kind: domain.EventPush,
			Ref:  "refs/tags/v1.2.3",
		})
		if err != nil {
			log.Fatal(err)
		}

		for _, run := range runs {
			log.Printf("%s: %s", run.WorkflowName, run.Status)
		}
	}
*/
package gantry
