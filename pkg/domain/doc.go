/*
Package domain contains the core data model of the stagehand optimistic engine.

It defines how a mutation attempt is identified and tracked while the remote authority
has not yet confirmed it. The package is kept pure and free of I/O, following the
Hexagonal Architecture principles the rest of the module relies on.

# Key Entities

  - Transition: identity and lifecycle flags of one optimistic attempt (id, operation, conflict, failed).
  - Action: a domain action carrying exactly one Transition, addressed by Namespace and Operation.
  - Entries: the confirmed state, a map from entity id to entity.
  - Output: confirmed state plus the ordered log of pending mutations.
  - Checkpoint: a serialisable copy of confirmed state for checkpoint stores.
*/
package domain
