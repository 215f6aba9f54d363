/*
Package session hosts engine outputs for long-lived processes.

A Manager keeps one output per session key, serialises dispatch for a key with a
reference-counted local mutex (plus an optional distributed lock for replicas),
and checkpoints confirmed state to a ports.CheckpointStore after commits. The
pending log is never persisted: a restarted session resumes from its last
confirmed state with no mutations in flight.
*/
package session
