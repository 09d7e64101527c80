// Code generated by ent, DO NOT EDIT.

package ent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql/sqlgraph"
	"entgo.io/ent/schema/field"
	"github.com/patchwright/patchwright/ent/buildattempt"
	"github.com/patchwright/patchwright/ent/conversation"
)

// BuildAttemptCreate is the builder for creating a BuildAttempt entity.
type BuildAttemptCreate struct {
	config
	mutation *BuildAttemptMutation
	hooks    []Hook
}

// SetConversationID sets the "conversation_id" field.
func (_c *BuildAttemptCreate) SetConversationID(v string) *BuildAttemptCreate {
	_c.mutation.SetConversationID(v)
	return _c
}

// SetAttempt sets the "attempt" field.
func (_c *BuildAttemptCreate) SetAttempt(v int) *BuildAttemptCreate {
	_c.mutation.SetAttempt(v)
	return _c
}

// SetSuccess sets the "success" field.
func (_c *BuildAttemptCreate) SetSuccess(v bool) *BuildAttemptCreate {
	_c.mutation.SetSuccess(v)
	return _c
}

// SetDurationMs sets the "duration_ms" field.
func (_c *BuildAttemptCreate) SetDurationMs(v int64) *BuildAttemptCreate {
	_c.mutation.SetDurationMs(v)
	return _c
}

// SetErrorCount sets the "error_count" field.
func (_c *BuildAttemptCreate) SetErrorCount(v int) *BuildAttemptCreate {
	_c.mutation.SetErrorCount(v)
	return _c
}

// SetLogExcerpt sets the "log_excerpt" field.
func (_c *BuildAttemptCreate) SetLogExcerpt(v string) *BuildAttemptCreate {
	_c.mutation.SetLogExcerpt(v)
	return _c
}

// SetNillableLogExcerpt sets the "log_excerpt" field if the given value is not nil.
func (_c *BuildAttemptCreate) SetNillableLogExcerpt(v *string) *BuildAttemptCreate {
	if v != nil {
		_c.SetLogExcerpt(*v)
	}
	return _c
}

// SetCreatedAt sets the "created_at" field.
func (_c *BuildAttemptCreate) SetCreatedAt(v time.Time) *BuildAttemptCreate {
	_c.mutation.SetCreatedAt(v)
	return _c
}

// SetNillableCreatedAt sets the "created_at" field if the given value is not nil.
func (_c *BuildAttemptCreate) SetNillableCreatedAt(v *time.Time) *BuildAttemptCreate {
	if v != nil {
		_c.SetCreatedAt(*v)
	}
	return _c
}

// SetID sets the "id" field.
func (_c *BuildAttemptCreate) SetID(v string) *BuildAttemptCreate {
	_c.mutation.SetID(v)
	return _c
}

// SetConversation sets the "conversation" edge to the Conversation entity.
func (_c *BuildAttemptCreate) SetConversation(v *Conversation) *BuildAttemptCreate {
	return _c.SetConversationID(v.ID)
}

// Mutation returns the BuildAttemptMutation object of the builder.
func (_c *BuildAttemptCreate) Mutation() *BuildAttemptMutation {
	return _c.mutation
}

// Save creates the BuildAttempt in the database.
func (_c *BuildAttemptCreate) Save(ctx context.Context) (*BuildAttempt, error) {
	_c.defaults()
	return withHooks(ctx, _c.sqlSave, _c.mutation, _c.hooks)
}

// SaveX calls Save and panics if Save returns an error.
func (_c *BuildAttemptCreate) SaveX(ctx context.Context) *BuildAttempt {
	v, err := _c.Save(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// Exec executes the query.
func (_c *BuildAttemptCreate) Exec(ctx context.Context) error {
	_, err := _c.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_c *BuildAttemptCreate) ExecX(ctx context.Context) {
	if err := _c.Exec(ctx); err != nil {
		panic(err)
	}
}

// defaults sets the default values of the builder before save.
func (_c *BuildAttemptCreate) defaults() {
	if _, ok := _c.mutation.CreatedAt(); !ok {
		v := buildattempt.DefaultCreatedAt()
		_c.mutation.SetCreatedAt(v)
	}
}

// check runs all checks and user-defined validators on the builder.
func (_c *BuildAttemptCreate) check() error {
	if _, ok := _c.mutation.ConversationID(); !ok {
		return &ValidationError{Name: "conversation_id", err: errors.New(`ent: missing required field "BuildAttempt.conversation_id"`)}
	}
	if _, ok := _c.mutation.Attempt(); !ok {
		return &ValidationError{Name: "attempt", err: errors.New(`ent: missing required field "BuildAttempt.attempt"`)}
	}
	if _, ok := _c.mutation.Success(); !ok {
		return &ValidationError{Name: "success", err: errors.New(`ent: missing required field "BuildAttempt.success"`)}
	}
	if _, ok := _c.mutation.DurationMs(); !ok {
		return &ValidationError{Name: "duration_ms", err: errors.New(`ent: missing required field "BuildAttempt.duration_ms"`)}
	}
	if _, ok := _c.mutation.ErrorCount(); !ok {
		return &ValidationError{Name: "error_count", err: errors.New(`ent: missing required field "BuildAttempt.error_count"`)}
	}
	if _, ok := _c.mutation.CreatedAt(); !ok {
		return &ValidationError{Name: "created_at", err: errors.New(`ent: missing required field "BuildAttempt.created_at"`)}
	}
	if len(_c.mutation.ConversationIDs()) == 0 {
		return &ValidationError{Name: "conversation", err: errors.New(`ent: missing required edge "BuildAttempt.conversation"`)}
	}
	return nil
}

func (_c *BuildAttemptCreate) sqlSave(ctx context.Context) (*BuildAttempt, error) {
	if err := _c.check(); err != nil {
		return nil, err
	}
	_node, _spec := _c.createSpec()
	if err := sqlgraph.CreateNode(ctx, _c.driver, _spec); err != nil {
		if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return nil, err
	}
	if _spec.ID.Value != nil {
		if id, ok := _spec.ID.Value.(string); ok {
			_node.ID = id
		} else {
			return nil, fmt.Errorf("unexpected BuildAttempt.ID type: %T", _spec.ID.Value)
		}
	}
	_c.mutation.id = &_node.ID
	_c.mutation.done = true
	return _node, nil
}

func (_c *BuildAttemptCreate) createSpec() (*BuildAttempt, *sqlgraph.CreateSpec) {
	var (
		_node = &BuildAttempt{config: _c.config}
		_spec = sqlgraph.NewCreateSpec(buildattempt.Table, sqlgraph.NewFieldSpec(buildattempt.FieldID, field.TypeString))
	)
	if id, ok := _c.mutation.ID(); ok {
		_node.ID = id
		_spec.ID.Value = id
	}
	if value, ok := _c.mutation.Attempt(); ok {
		_spec.SetField(buildattempt.FieldAttempt, field.TypeInt, value)
		_node.Attempt = value
	}
	if value, ok := _c.mutation.Success(); ok {
		_spec.SetField(buildattempt.FieldSuccess, field.TypeBool, value)
		_node.Success = value
	}
	if value, ok := _c.mutation.DurationMs(); ok {
		_spec.SetField(buildattempt.FieldDurationMs, field.TypeInt64, value)
		_node.DurationMs = value
	}
	if value, ok := _c.mutation.ErrorCount(); ok {
		_spec.SetField(buildattempt.FieldErrorCount, field.TypeInt, value)
		_node.ErrorCount = value
	}
	if value, ok := _c.mutation.LogExcerpt(); ok {
		_spec.SetField(buildattempt.FieldLogExcerpt, field.TypeString, value)
		_node.LogExcerpt = value
	}
	if value, ok := _c.mutation.CreatedAt(); ok {
		_spec.SetField(buildattempt.FieldCreatedAt, field.TypeTime, value)
		_node.CreatedAt = value
	}
	if nodes := _c.mutation.ConversationIDs(); len(nodes) > 0 {
		edge := &sqlgraph.EdgeSpec{
			Rel:     sqlgraph.M2O,
			Inverse: true,
			Table:   buildattempt.ConversationTable,
			Columns: []string{buildattempt.ConversationColumn},
			Bidi:    false,
			Target: &sqlgraph.EdgeTarget{
				IDSpec: sqlgraph.NewFieldSpec(conversation.FieldID, field.TypeString),
			},
		}
		for _, k := range nodes {
			edge.Target.Nodes = append(edge.Target.Nodes, k)
		}
		_node.ConversationID = nodes[0]
		_spec.Edges = append(_spec.Edges, edge)
	}
	return _node, _spec
}

// BuildAttemptCreateBulk is the builder for creating many BuildAttempt entities in bulk.
type BuildAttemptCreateBulk struct {
	config
	err      error
	builders []*BuildAttemptCreate
}

// Save creates the BuildAttempt entities in the database.
func (_c *BuildAttemptCreateBulk) Save(ctx context.Context) ([]*BuildAttempt, error) {
	if _c.err != nil {
		return nil, _c.err
	}
	specs := make([]*sqlgraph.CreateSpec, len(_c.builders))
	nodes := make([]*BuildAttempt, len(_c.builders))
	mutators := make([]Mutator, len(_c.builders))
	for i := range _c.builders {
		func(i int, root context.Context) {
			builder := _c.builders[i]
			builder.defaults()
			var mut Mutator = MutateFunc(func(ctx context.Context, m Mutation) (Value, error) {
				mutation, ok := m.(*BuildAttemptMutation)
				if !ok {
					return nil, fmt.Errorf("unexpected mutation type %T", m)
				}
				if err := builder.check(); err != nil {
					return nil, err
				}
				builder.mutation = mutation
				var err error
				nodes[i], specs[i] = builder.createSpec()
				if i < len(mutators)-1 {
					_, err = mutators[i+1].Mutate(root, _c.builders[i+1].mutation)
				} else {
					spec := &sqlgraph.BatchCreateSpec{Nodes: specs}
					// Invoke the actual operation on the latest mutation in the chain.
					if err = sqlgraph.BatchCreate(ctx, _c.driver, spec); err != nil {
						if sqlgraph.IsConstraintError(err) {
							err = &ConstraintError{msg: err.Error(), wrap: err}
						}
					}
				}
				if err != nil {
					return nil, err
				}
				mutation.id = &nodes[i].ID
				mutation.done = true
				return nodes[i], nil
			})
			for i := len(builder.hooks) - 1; i >= 0; i-- {
				mut = builder.hooks[i](mut)
			}
			mutators[i] = mut
		}(i, ctx)
	}
	if len(mutators) > 0 {
		if _, err := mutators[0].Mutate(ctx, _c.builders[0].mutation); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// SaveX is like Save, but panics if an error occurs.
func (_c *BuildAttemptCreateBulk) SaveX(ctx context.Context) []*BuildAttempt {
	v, err := _c.Save(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// Exec executes the query.
func (_c *BuildAttemptCreateBulk) Exec(ctx context.Context) error {
	_, err := _c.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_c *BuildAttemptCreateBulk) ExecX(ctx context.Context) {
	if err := _c.Exec(ctx); err != nil {
		panic(err)
	}
}
