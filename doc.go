/*
Package stagehand reconciles optimistic client-side mutations with a remote authority.

A client applies a change locally before the authority has confirmed it, then later
learns the outcome: the change was accepted (commit), rejected (fail), abandoned
(stash), or was based on a copy the authority has since moved past (conflict).
The engine keeps two things apart: the confirmed state, which only changes on
commit, and an ordered log of pending mutations that a view layer can fold on top.

# Concepts

  - Transition: the id shared by every step of one mutation attempt.
  - Group: the stage/commit/fail/stash constructors of one namespace (package transition).
  - Strategy: keyed upsert with a caller-supplied ordering predicate (package merge).
  - Operation: the caller's reducer, run against a probe on stage and for real on commit.

# Usage

	type Todo struct {
		ID       string `json:"id"`
		Revision int    `json:"revision"`
	}

	var Add = transition.Must(transition.New("todos::add", transition.Builders[Todo, Todo]{
		Commit: transition.Identity[Todo](),
	}))

	strategy := merge.New(
		func(t Todo) string { return t.ID },
		func(existing, incoming Todo) bool { return incoming.Revision > existing.Revision },
	)

	eng, err := stagehand.New("todos", nil, strategy, func(ctx stagehand.Context[Todo], a domain.Action) domain.Entries[Todo] {
		if !Add.Owns(a) {
			return nil
		}
		todo, _ := transition.DecodePayload[Todo](a)
		return ctx.Create(todo)
	})
	if err != nil {
		log.Fatal(err)
	}

	id := transition.NewID()
	out := eng.Reduce(eng.Initial(),
		Add.Stage(id, Todo{ID: "1"}),
		Add.Commit(id, Todo{ID: "1", Revision: 1}),
	)

Process never fails: conflicts and failures are flags on the pending log entries,
readable through Output.IsConflicting and Output.IsFailed.

For long-lived hosts, package session keeps one output per session key and
checkpoints confirmed state to any ports.CheckpointStore.
*/
package stagehand
