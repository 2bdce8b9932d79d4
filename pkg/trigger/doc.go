/*
Package trigger implements event-to-workflow matching.

A workflow declares its trigger predicates (push branch/tag globs, pull
request filters, merge-queue branches, cron schedules, manual dispatch);
this package decides whether a concrete Event fires them. A mismatch is
never an error: the workflow simply does not run.
*/
package trigger
