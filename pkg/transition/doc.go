/*
Package transition builds correlated transition actions for one namespace.

A Group owns four constructors (stage, commit, fail, stash) that share the
namespace and stamp every action with its transition id and operation. Payload
shapes are fixed per group by the type parameters of Builders, so a mismatched
payload is a compile error at the call site rather than a runtime surprise.

Example usage:

	type Todo struct {
		ID       string
		Revision int
	}

	var Add = transition.Must(transition.New("todos::add", transition.Builders[Todo, Todo]{
		Stage:  transition.Identity[Todo](),
		Commit: transition.Identity[Todo](),
	}))

	id := transition.NewID()
	stage := Add.Stage(id, Todo{ID: "1"})
	commit := Add.Commit(id, Todo{ID: "1", Revision: 1})
	fail := Add.Fail(id, errors.New("timeout"))
	stash := Add.Stash(id)
*/
package transition
