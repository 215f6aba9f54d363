/*
Package ports defines the driven ports (interfaces) for stagehand hosts.

The engine itself performs no I/O. These interfaces let the session manager
persist confirmed state and coordinate replicas without depending on a backend.

# Key Interfaces

  - CheckpointStore: persists confirmed state (memory, file, redis, sqlite adapters).
  - DistributedLocker: serialises dispatch for one session key across instances.
*/
package ports
