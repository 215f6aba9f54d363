package transition_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/transition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID       string `json:"id"`
	Value    string `json:"value"`
	Revision int    `json:"revision"`
}

type edit struct {
	ID     string         `json:"id"`
	Update map[string]any `json:"update"`
}

func TestGroup_Defaults(t *testing.T) {
	g, err := transition.New("items::delete", transition.Builders[string, string]{
		Stage: func(id string) transition.Prepared { return transition.Prepared{Payload: map[string]string{"id": id}} },
	})
	require.NoError(t, err)

	stage := g.Stage("t1", "001")
	assert.Equal(t, "items::delete::stage", stage.Type())
	assert.Equal(t, map[string]string{"id": "001"}, stage.Payload)
	assert.Equal(t, &domain.Transition{ID: "t1", Operation: domain.OperationStage}, stage.Transition)

	commit := g.Commit("t1", "ignored")
	assert.Equal(t, domain.Empty{}, commit.Payload, "commit defaults to an empty payload")
	assert.Equal(t, domain.OperationCommit, commit.Transition.Operation)

	stash := g.Stash("t1")
	assert.Equal(t, domain.Empty{}, stash.Payload)
	assert.Nil(t, stash.Err)
	assert.Equal(t, "items::delete::stash", stash.Type())

	cause := errors.New("offline")
	fail := g.Fail("t1", cause)
	assert.Equal(t, domain.Empty{}, fail.Payload)
	assert.Same(t, cause, fail.Err)
	assert.Equal(t, domain.OperationFail, fail.Transition.Operation)
	assert.False(t, fail.Transition.Failed, "flags are engine-computed")
}

func TestGroup_CustomBuilders(t *testing.T) {
	g := transition.Must(transition.New("items::edit", transition.Builders[edit, item]{
		Commit: transition.Identity[item](),
		Fail: func(err error) transition.Prepared {
			return transition.Prepared{Payload: map[string]string{"reason": err.Error()}, Err: err}
		},
		Stash: func() transition.Prepared { return transition.Prepared{Payload: "discarded"} },
	}))

	stage := g.Stage("t2", edit{ID: "1", Update: map[string]any{"value": "x"}})
	assert.Equal(t, edit{ID: "1", Update: map[string]any{"value": "x"}}, stage.Payload, "stage defaults to identity")

	commit := g.Commit("t2", item{ID: "1", Revision: 2})
	assert.Equal(t, item{ID: "1", Revision: 2}, commit.Payload)

	fail := g.Fail("t2", errors.New("409"))
	assert.Equal(t, map[string]string{"reason": "409"}, fail.Payload)
	assert.EqualError(t, fail.Err, "409")

	assert.Equal(t, "discarded", g.Stash("t2").Payload)
}

func TestGroup_SharedIdentity(t *testing.T) {
	g := transition.Must(transition.New("items::add", transition.Builders[item, item]{}))
	id := transition.NewID()

	actions := []domain.Action{
		g.Stage(id, item{ID: "1"}),
		g.Commit(id, item{ID: "1"}),
		g.Fail(id, errors.New("x")),
		g.Stash(id),
	}
	for i, a := range actions {
		assert.Equal(t, id, a.ID())
		assert.Equal(t, g.Namespace(), a.Namespace)
		assert.Equal(t, domain.Operations()[i], a.Transition.Operation)
		assert.True(t, g.Owns(a))
	}
	assert.NotEqual(t, id, transition.NewID())
}

func TestGroup_Match(t *testing.T) {
	add := transition.Must(transition.New("items::add", transition.Builders[item, item]{}))
	editGroup := transition.Must(transition.New("items::edit", transition.Builders[item, item]{}))

	assert.True(t, add.Match(add.Commit("1", item{})))
	assert.False(t, add.Match(add.Stage("1", item{})), "only commits match")
	assert.False(t, add.Match(editGroup.Commit("1", item{})), "other namespaces never match")
	assert.False(t, add.Match(domain.Plain("items::add", nil)), "plain actions never match")
	assert.False(t, add.Owns(domain.Plain("items::add", nil)))
}

func TestNew_InvalidNamespace(t *testing.T) {
	_, err := transition.New("", transition.Builders[item, item]{})
	assert.ErrorIs(t, err, domain.ErrInvalidNamespace)

	assert.Panics(t, func() {
		transition.Must(transition.New("a::", transition.Builders[item, item]{}))
	})
}

func TestDecodePayload(t *testing.T) {
	g := transition.Must(transition.New("items::add", transition.Builders[item, item]{}))

	t.Run("In Process", func(t *testing.T) {
		got, err := transition.DecodePayload[item](g.Stage("1", item{ID: "1", Revision: 4}))
		require.NoError(t, err)
		assert.Equal(t, item{ID: "1", Revision: 4}, got)
	})

	t.Run("From Wire", func(t *testing.T) {
		data, err := json.Marshal(g.Commit("1", item{ID: "1", Value: "v", Revision: 7}))
		require.NoError(t, err)

		var decoded domain.Action
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, g.Match(decoded))

		got, err := transition.DecodePayload[item](decoded)
		require.NoError(t, err)
		assert.Equal(t, item{ID: "1", Value: "v", Revision: 7}, got)
	})

	t.Run("Wrong Shape", func(t *testing.T) {
		_, err := transition.DecodePayload[item](domain.Action{Payload: []int{1, 2}})
		assert.Error(t, err)
	})
}
