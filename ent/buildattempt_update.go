// Code generated by ent, DO NOT EDIT.

package ent

import (
	"context"
	"errors"
	"fmt"

	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"entgo.io/ent/schema/field"
	"github.com/patchwright/patchwright/ent/buildattempt"
	"github.com/patchwright/patchwright/ent/predicate"
)

// BuildAttemptUpdate is the builder for updating BuildAttempt entities.
type BuildAttemptUpdate struct {
	config
	hooks    []Hook
	mutation *BuildAttemptMutation
}

// Where appends a list predicates to the BuildAttemptUpdate builder.
func (_u *BuildAttemptUpdate) Where(ps ...predicate.BuildAttempt) *BuildAttemptUpdate {
	_u.mutation.Where(ps...)
	return _u
}

// SetAttempt sets the "attempt" field.
func (_u *BuildAttemptUpdate) SetAttempt(v int) *BuildAttemptUpdate {
	_u.mutation.ResetAttempt()
	_u.mutation.SetAttempt(v)
	return _u
}

// SetNillableAttempt sets the "attempt" field if the given value is not nil.
func (_u *BuildAttemptUpdate) SetNillableAttempt(v *int) *BuildAttemptUpdate {
	if v != nil {
		_u.SetAttempt(*v)
	}
	return _u
}

// AddAttempt adds value to the "attempt" field.
func (_u *BuildAttemptUpdate) AddAttempt(v int) *BuildAttemptUpdate {
	_u.mutation.AddAttempt(v)
	return _u
}

// SetSuccess sets the "success" field.
func (_u *BuildAttemptUpdate) SetSuccess(v bool) *BuildAttemptUpdate {
	_u.mutation.SetSuccess(v)
	return _u
}

// SetNillableSuccess sets the "success" field if the given value is not nil.
func (_u *BuildAttemptUpdate) SetNillableSuccess(v *bool) *BuildAttemptUpdate {
	if v != nil {
		_u.SetSuccess(*v)
	}
	return _u
}

// SetDurationMs sets the "duration_ms" field.
func (_u *BuildAttemptUpdate) SetDurationMs(v int64) *BuildAttemptUpdate {
	_u.mutation.ResetDurationMs()
	_u.mutation.SetDurationMs(v)
	return _u
}

// SetNillableDurationMs sets the "duration_ms" field if the given value is not nil.
func (_u *BuildAttemptUpdate) SetNillableDurationMs(v *int64) *BuildAttemptUpdate {
	if v != nil {
		_u.SetDurationMs(*v)
	}
	return _u
}

// AddDurationMs adds value to the "duration_ms" field.
func (_u *BuildAttemptUpdate) AddDurationMs(v int64) *BuildAttemptUpdate {
	_u.mutation.AddDurationMs(v)
	return _u
}

// SetErrorCount sets the "error_count" field.
func (_u *BuildAttemptUpdate) SetErrorCount(v int) *BuildAttemptUpdate {
	_u.mutation.ResetErrorCount()
	_u.mutation.SetErrorCount(v)
	return _u
}

// SetNillableErrorCount sets the "error_count" field if the given value is not nil.
func (_u *BuildAttemptUpdate) SetNillableErrorCount(v *int) *BuildAttemptUpdate {
	if v != nil {
		_u.SetErrorCount(*v)
	}
	return _u
}

// AddErrorCount adds value to the "error_count" field.
func (_u *BuildAttemptUpdate) AddErrorCount(v int) *BuildAttemptUpdate {
	_u.mutation.AddErrorCount(v)
	return _u
}

// SetLogExcerpt sets the "log_excerpt" field.
func (_u *BuildAttemptUpdate) SetLogExcerpt(v string) *BuildAttemptUpdate {
	_u.mutation.SetLogExcerpt(v)
	return _u
}

// SetNillableLogExcerpt sets the "log_excerpt" field if the given value is not nil.
func (_u *BuildAttemptUpdate) SetNillableLogExcerpt(v *string) *BuildAttemptUpdate {
	if v != nil {
		_u.SetLogExcerpt(*v)
	}
	return _u
}

// ClearLogExcerpt clears the value of the "log_excerpt" field.
func (_u *BuildAttemptUpdate) ClearLogExcerpt() *BuildAttemptUpdate {
	_u.mutation.ClearLogExcerpt()
	return _u
}

// Mutation returns the BuildAttemptMutation object of the builder.
func (_u *BuildAttemptUpdate) Mutation() *BuildAttemptMutation {
	return _u.mutation
}

// Save executes the query and returns the number of nodes affected by the update operation.
func (_u *BuildAttemptUpdate) Save(ctx context.Context) (int, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *BuildAttemptUpdate) SaveX(ctx context.Context) int {
	affected, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return affected
}

// Exec executes the query.
func (_u *BuildAttemptUpdate) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *BuildAttemptUpdate) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

// check runs all checks and user-defined validators on the builder.
func (_u *BuildAttemptUpdate) check() error {
	if _u.mutation.ConversationCleared() && len(_u.mutation.ConversationIDs()) > 0 {
		return errors.New(`ent: clearing a required unique edge "BuildAttempt.conversation"`)
	}
	return nil
}

func (_u *BuildAttemptUpdate) sqlSave(ctx context.Context) (_node int, err error) {
	if err := _u.check(); err != nil {
		return _node, err
	}
	_spec := sqlgraph.NewUpdateSpec(buildattempt.Table, buildattempt.Columns, sqlgraph.NewFieldSpec(buildattempt.FieldID, field.TypeString))
	if ps := _u.mutation.predicates; len(ps) > 0 {
		_spec.Predicate = func(selector *sql.Selector) {
			for i := range ps {
				ps[i](selector)
			}
		}
	}
	if value, ok := _u.mutation.Attempt(); ok {
		_spec.SetField(buildattempt.FieldAttempt, field.TypeInt, value)
	}
	if value, ok := _u.mutation.AddedAttempt(); ok {
		_spec.AddField(buildattempt.FieldAttempt, field.TypeInt, value)
	}
	if value, ok := _u.mutation.Success(); ok {
		_spec.SetField(buildattempt.FieldSuccess, field.TypeBool, value)
	}
	if value, ok := _u.mutation.DurationMs(); ok {
		_spec.SetField(buildattempt.FieldDurationMs, field.TypeInt64, value)
	}
	if value, ok := _u.mutation.AddedDurationMs(); ok {
		_spec.AddField(buildattempt.FieldDurationMs, field.TypeInt64, value)
	}
	if value, ok := _u.mutation.ErrorCount(); ok {
		_spec.SetField(buildattempt.FieldErrorCount, field.TypeInt, value)
	}
	if value, ok := _u.mutation.AddedErrorCount(); ok {
		_spec.AddField(buildattempt.FieldErrorCount, field.TypeInt, value)
	}
	if value, ok := _u.mutation.LogExcerpt(); ok {
		_spec.SetField(buildattempt.FieldLogExcerpt, field.TypeString, value)
	}
	if _u.mutation.LogExcerptCleared() {
		_spec.ClearField(buildattempt.FieldLogExcerpt, field.TypeString)
	}
	if _node, err = sqlgraph.UpdateNodes(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{buildattempt.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return 0, err
	}
	_u.mutation.done = true
	return _node, nil
}

// BuildAttemptUpdateOne is the builder for updating a single BuildAttempt entity.
type BuildAttemptUpdateOne struct {
	config
	fields   []string
	hooks    []Hook
	mutation *BuildAttemptMutation
}

// SetAttempt sets the "attempt" field.
func (_u *BuildAttemptUpdateOne) SetAttempt(v int) *BuildAttemptUpdateOne {
	_u.mutation.ResetAttempt()
	_u.mutation.SetAttempt(v)
	return _u
}

// SetNillableAttempt sets the "attempt" field if the given value is not nil.
func (_u *BuildAttemptUpdateOne) SetNillableAttempt(v *int) *BuildAttemptUpdateOne {
	if v != nil {
		_u.SetAttempt(*v)
	}
	return _u
}

// AddAttempt adds value to the "attempt" field.
func (_u *BuildAttemptUpdateOne) AddAttempt(v int) *BuildAttemptUpdateOne {
	_u.mutation.AddAttempt(v)
	return _u
}

// SetSuccess sets the "success" field.
func (_u *BuildAttemptUpdateOne) SetSuccess(v bool) *BuildAttemptUpdateOne {
	_u.mutation.SetSuccess(v)
	return _u
}

// SetNillableSuccess sets the "success" field if the given value is not nil.
func (_u *BuildAttemptUpdateOne) SetNillableSuccess(v *bool) *BuildAttemptUpdateOne {
	if v != nil {
		_u.SetSuccess(*v)
	}
	return _u
}

// SetDurationMs sets the "duration_ms" field.
func (_u *BuildAttemptUpdateOne) SetDurationMs(v int64) *BuildAttemptUpdateOne {
	_u.mutation.ResetDurationMs()
	_u.mutation.SetDurationMs(v)
	return _u
}

// SetNillableDurationMs sets the "duration_ms" field if the given value is not nil.
func (_u *BuildAttemptUpdateOne) SetNillableDurationMs(v *int64) *BuildAttemptUpdateOne {
	if v != nil {
		_u.SetDurationMs(*v)
	}
	return _u
}

// AddDurationMs adds value to the "duration_ms" field.
func (_u *BuildAttemptUpdateOne) AddDurationMs(v int64) *BuildAttemptUpdateOne {
	_u.mutation.AddDurationMs(v)
	return _u
}

// SetErrorCount sets the "error_count" field.
func (_u *BuildAttemptUpdateOne) SetErrorCount(v int) *BuildAttemptUpdateOne {
	_u.mutation.ResetErrorCount()
	_u.mutation.SetErrorCount(v)
	return _u
}

// SetNillableErrorCount sets the "error_count" field if the given value is not nil.
func (_u *BuildAttemptUpdateOne) SetNillableErrorCount(v *int) *BuildAttemptUpdateOne {
	if v != nil {
		_u.SetErrorCount(*v)
	}
	return _u
}

// AddErrorCount adds value to the "error_count" field.
func (_u *BuildAttemptUpdateOne) AddErrorCount(v int) *BuildAttemptUpdateOne {
	_u.mutation.AddErrorCount(v)
	return _u
}

// SetLogExcerpt sets the "log_excerpt" field.
func (_u *BuildAttemptUpdateOne) SetLogExcerpt(v string) *BuildAttemptUpdateOne {
	_u.mutation.SetLogExcerpt(v)
	return _u
}

// SetNillableLogExcerpt sets the "log_excerpt" field if the given value is not nil.
func (_u *BuildAttemptUpdateOne) SetNillableLogExcerpt(v *string) *BuildAttemptUpdateOne {
	if v != nil {
		_u.SetLogExcerpt(*v)
	}
	return _u
}

// ClearLogExcerpt clears the value of the "log_excerpt" field.
func (_u *BuildAttemptUpdateOne) ClearLogExcerpt() *BuildAttemptUpdateOne {
	_u.mutation.ClearLogExcerpt()
	return _u
}

// Mutation returns the BuildAttemptMutation object of the builder.
func (_u *BuildAttemptUpdateOne) Mutation() *BuildAttemptMutation {
	return _u.mutation
}

// Where appends a list predicates to the BuildAttemptUpdate builder.
func (_u *BuildAttemptUpdateOne) Where(ps ...predicate.BuildAttempt) *BuildAttemptUpdateOne {
	_u.mutation.Where(ps...)
	return _u
}

// Select allows selecting one or more fields (columns) of the returned entity.
// The default is selecting all fields defined in the entity schema.
func (_u *BuildAttemptUpdateOne) Select(field string, fields ...string) *BuildAttemptUpdateOne {
	_u.fields = append([]string{field}, fields...)
	return _u
}

// Save executes the query and returns the updated BuildAttempt entity.
func (_u *BuildAttemptUpdateOne) Save(ctx context.Context) (*BuildAttempt, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *BuildAttemptUpdateOne) SaveX(ctx context.Context) *BuildAttempt {
	node, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return node
}

// Exec executes the query on the entity.
func (_u *BuildAttemptUpdateOne) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *BuildAttemptUpdateOne) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

// check runs all checks and user-defined validators on the builder.
func (_u *BuildAttemptUpdateOne) check() error {
	if _u.mutation.ConversationCleared() && len(_u.mutation.ConversationIDs()) > 0 {
		return errors.New(`ent: clearing a required unique edge "BuildAttempt.conversation"`)
	}
	return nil
}

func (_u *BuildAttemptUpdateOne) sqlSave(ctx context.Context) (_node *BuildAttempt, err error) {
	if err := _u.check(); err != nil {
		return _node, err
	}
	_spec := sqlgraph.NewUpdateSpec(buildattempt.Table, buildattempt.Columns, sqlgraph.NewFieldSpec(buildattempt.FieldID, field.TypeString))
	id, ok := _u.mutation.ID()
	if !ok {
		return nil, &ValidationError{Name: "id", err: errors.New(`ent: missing "BuildAttempt.id" for update`)}
	}
	_spec.Node.ID.Value = id
	if fields := _u.fields; len(fields) > 0 {
		_spec.Node.Columns = make([]string, 0, len(fields))
		_spec.Node.Columns = append(_spec.Node.Columns, buildattempt.FieldID)
		for _, f := range fields {
			if !buildattempt.ValidColumn(f) {
				return nil, &ValidationError{Name: f, err: fmt.Errorf("ent: invalid field %q for query", f)}
			}
			if f != buildattempt.FieldID {
				_spec.Node.Columns = append(_spec.Node.Columns, f)
			}
		}
	}
	if ps := _u.mutation.predicates; len(ps) > 0 {
		_spec.Predicate = func(selector *sql.Selector) {
			for i := range ps {
				ps[i](selector)
			}
		}
	}
	if value, ok := _u.mutation.Attempt(); ok {
		_spec.SetField(buildattempt.FieldAttempt, field.TypeInt, value)
	}
	if value, ok := _u.mutation.AddedAttempt(); ok {
		_spec.AddField(buildattempt.FieldAttempt, field.TypeInt, value)
	}
	if value, ok := _u.mutation.Success(); ok {
		_spec.SetField(buildattempt.FieldSuccess, field.TypeBool, value)
	}
	if value, ok := _u.mutation.DurationMs(); ok {
		_spec.SetField(buildattempt.FieldDurationMs, field.TypeInt64, value)
	}
	if value, ok := _u.mutation.AddedDurationMs(); ok {
		_spec.AddField(buildattempt.FieldDurationMs, field.TypeInt64, value)
	}
	if value, ok := _u.mutation.ErrorCount(); ok {
		_spec.SetField(buildattempt.FieldErrorCount, field.TypeInt, value)
	}
	if value, ok := _u.mutation.AddedErrorCount(); ok {
		_spec.AddField(buildattempt.FieldErrorCount, field.TypeInt, value)
	}
	if value, ok := _u.mutation.LogExcerpt(); ok {
		_spec.SetField(buildattempt.FieldLogExcerpt, field.TypeString, value)
	}
	if _u.mutation.LogExcerptCleared() {
		_spec.ClearField(buildattempt.FieldLogExcerpt, field.TypeString)
	}
	_node = &BuildAttempt{config: _u.config}
	_spec.Assign = _node.assignValues
	_spec.ScanValues = _node.scanValues
	if err = sqlgraph.UpdateNode(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{buildattempt.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return nil, err
	}
	_u.mutation.done = true
	return _node, nil
}
