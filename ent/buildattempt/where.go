// Code generated by ent, DO NOT EDIT.

package buildattempt

import (
	"time"

	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"github.com/patchwright/patchwright/ent/predicate"
)

// ID filters vertices based on their ID field.
func ID(id string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldID, id))
}

// IDEQ applies the EQ predicate on the ID field.
func IDEQ(id string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldID, id))
}

// IDNEQ applies the NEQ predicate on the ID field.
func IDNEQ(id string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNEQ(FieldID, id))
}

// IDIn applies the In predicate on the ID field.
func IDIn(ids ...string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldIn(FieldID, ids...))
}

// IDNotIn applies the NotIn predicate on the ID field.
func IDNotIn(ids ...string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNotIn(FieldID, ids...))
}

// IDGT applies the GT predicate on the ID field.
func IDGT(id string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGT(FieldID, id))
}

// IDGTE applies the GTE predicate on the ID field.
func IDGTE(id string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGTE(FieldID, id))
}

// IDLT applies the LT predicate on the ID field.
func IDLT(id string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLT(FieldID, id))
}

// IDLTE applies the LTE predicate on the ID field.
func IDLTE(id string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLTE(FieldID, id))
}

// IDEqualFold applies the EqualFold predicate on the ID field.
func IDEqualFold(id string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEqualFold(FieldID, id))
}

// IDContainsFold applies the ContainsFold predicate on the ID field.
func IDContainsFold(id string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldContainsFold(FieldID, id))
}

// ConversationID applies equality check predicate on the "conversation_id" field. It's identical to ConversationIDEQ.
func ConversationID(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldConversationID, v))
}

// Attempt applies equality check predicate on the "attempt" field. It's identical to AttemptEQ.
func Attempt(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldAttempt, v))
}

// Success applies equality check predicate on the "success" field. It's identical to SuccessEQ.
func Success(v bool) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldSuccess, v))
}

// DurationMs applies equality check predicate on the "duration_ms" field. It's identical to DurationMsEQ.
func DurationMs(v int64) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldDurationMs, v))
}

// ErrorCount applies equality check predicate on the "error_count" field. It's identical to ErrorCountEQ.
func ErrorCount(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldErrorCount, v))
}

// LogExcerpt applies equality check predicate on the "log_excerpt" field. It's identical to LogExcerptEQ.
func LogExcerpt(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldLogExcerpt, v))
}

// CreatedAt applies equality check predicate on the "created_at" field. It's identical to CreatedAtEQ.
func CreatedAt(v time.Time) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldCreatedAt, v))
}

// ConversationIDEQ applies the EQ predicate on the "conversation_id" field.
func ConversationIDEQ(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldConversationID, v))
}

// ConversationIDNEQ applies the NEQ predicate on the "conversation_id" field.
func ConversationIDNEQ(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNEQ(FieldConversationID, v))
}

// ConversationIDIn applies the In predicate on the "conversation_id" field.
func ConversationIDIn(vs ...string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldIn(FieldConversationID, vs...))
}

// ConversationIDNotIn applies the NotIn predicate on the "conversation_id" field.
func ConversationIDNotIn(vs ...string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNotIn(FieldConversationID, vs...))
}

// ConversationIDGT applies the GT predicate on the "conversation_id" field.
func ConversationIDGT(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGT(FieldConversationID, v))
}

// ConversationIDGTE applies the GTE predicate on the "conversation_id" field.
func ConversationIDGTE(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGTE(FieldConversationID, v))
}

// ConversationIDLT applies the LT predicate on the "conversation_id" field.
func ConversationIDLT(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLT(FieldConversationID, v))
}

// ConversationIDLTE applies the LTE predicate on the "conversation_id" field.
func ConversationIDLTE(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLTE(FieldConversationID, v))
}

// ConversationIDContains applies the Contains predicate on the "conversation_id" field.
func ConversationIDContains(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldContains(FieldConversationID, v))
}

// ConversationIDHasPrefix applies the HasPrefix predicate on the "conversation_id" field.
func ConversationIDHasPrefix(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldHasPrefix(FieldConversationID, v))
}

// ConversationIDHasSuffix applies the HasSuffix predicate on the "conversation_id" field.
func ConversationIDHasSuffix(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldHasSuffix(FieldConversationID, v))
}

// ConversationIDEqualFold applies the EqualFold predicate on the "conversation_id" field.
func ConversationIDEqualFold(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEqualFold(FieldConversationID, v))
}

// ConversationIDContainsFold applies the ContainsFold predicate on the "conversation_id" field.
func ConversationIDContainsFold(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldContainsFold(FieldConversationID, v))
}

// AttemptEQ applies the EQ predicate on the "attempt" field.
func AttemptEQ(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldAttempt, v))
}

// AttemptNEQ applies the NEQ predicate on the "attempt" field.
func AttemptNEQ(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNEQ(FieldAttempt, v))
}

// AttemptIn applies the In predicate on the "attempt" field.
func AttemptIn(vs ...int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldIn(FieldAttempt, vs...))
}

// AttemptNotIn applies the NotIn predicate on the "attempt" field.
func AttemptNotIn(vs ...int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNotIn(FieldAttempt, vs...))
}

// AttemptGT applies the GT predicate on the "attempt" field.
func AttemptGT(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGT(FieldAttempt, v))
}

// AttemptGTE applies the GTE predicate on the "attempt" field.
func AttemptGTE(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGTE(FieldAttempt, v))
}

// AttemptLT applies the LT predicate on the "attempt" field.
func AttemptLT(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLT(FieldAttempt, v))
}

// AttemptLTE applies the LTE predicate on the "attempt" field.
func AttemptLTE(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLTE(FieldAttempt, v))
}

// SuccessEQ applies the EQ predicate on the "success" field.
func SuccessEQ(v bool) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldSuccess, v))
}

// SuccessNEQ applies the NEQ predicate on the "success" field.
func SuccessNEQ(v bool) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNEQ(FieldSuccess, v))
}

// DurationMsEQ applies the EQ predicate on the "duration_ms" field.
func DurationMsEQ(v int64) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldDurationMs, v))
}

// DurationMsNEQ applies the NEQ predicate on the "duration_ms" field.
func DurationMsNEQ(v int64) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNEQ(FieldDurationMs, v))
}

// DurationMsIn applies the In predicate on the "duration_ms" field.
func DurationMsIn(vs ...int64) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldIn(FieldDurationMs, vs...))
}

// DurationMsNotIn applies the NotIn predicate on the "duration_ms" field.
func DurationMsNotIn(vs ...int64) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNotIn(FieldDurationMs, vs...))
}

// DurationMsGT applies the GT predicate on the "duration_ms" field.
func DurationMsGT(v int64) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGT(FieldDurationMs, v))
}

// DurationMsGTE applies the GTE predicate on the "duration_ms" field.
func DurationMsGTE(v int64) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGTE(FieldDurationMs, v))
}

// DurationMsLT applies the LT predicate on the "duration_ms" field.
func DurationMsLT(v int64) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLT(FieldDurationMs, v))
}

// DurationMsLTE applies the LTE predicate on the "duration_ms" field.
func DurationMsLTE(v int64) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLTE(FieldDurationMs, v))
}

// ErrorCountEQ applies the EQ predicate on the "error_count" field.
func ErrorCountEQ(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldErrorCount, v))
}

// ErrorCountNEQ applies the NEQ predicate on the "error_count" field.
func ErrorCountNEQ(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNEQ(FieldErrorCount, v))
}

// ErrorCountIn applies the In predicate on the "error_count" field.
func ErrorCountIn(vs ...int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldIn(FieldErrorCount, vs...))
}

// ErrorCountNotIn applies the NotIn predicate on the "error_count" field.
func ErrorCountNotIn(vs ...int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNotIn(FieldErrorCount, vs...))
}

// ErrorCountGT applies the GT predicate on the "error_count" field.
func ErrorCountGT(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGT(FieldErrorCount, v))
}

// ErrorCountGTE applies the GTE predicate on the "error_count" field.
func ErrorCountGTE(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGTE(FieldErrorCount, v))
}

// ErrorCountLT applies the LT predicate on the "error_count" field.
func ErrorCountLT(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLT(FieldErrorCount, v))
}

// ErrorCountLTE applies the LTE predicate on the "error_count" field.
func ErrorCountLTE(v int) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLTE(FieldErrorCount, v))
}

// LogExcerptEQ applies the EQ predicate on the "log_excerpt" field.
func LogExcerptEQ(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldLogExcerpt, v))
}

// LogExcerptNEQ applies the NEQ predicate on the "log_excerpt" field.
func LogExcerptNEQ(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNEQ(FieldLogExcerpt, v))
}

// LogExcerptIn applies the In predicate on the "log_excerpt" field.
func LogExcerptIn(vs ...string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldIn(FieldLogExcerpt, vs...))
}

// LogExcerptNotIn applies the NotIn predicate on the "log_excerpt" field.
func LogExcerptNotIn(vs ...string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNotIn(FieldLogExcerpt, vs...))
}

// LogExcerptGT applies the GT predicate on the "log_excerpt" field.
func LogExcerptGT(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGT(FieldLogExcerpt, v))
}

// LogExcerptGTE applies the GTE predicate on the "log_excerpt" field.
func LogExcerptGTE(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGTE(FieldLogExcerpt, v))
}

// LogExcerptLT applies the LT predicate on the "log_excerpt" field.
func LogExcerptLT(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLT(FieldLogExcerpt, v))
}

// LogExcerptLTE applies the LTE predicate on the "log_excerpt" field.
func LogExcerptLTE(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLTE(FieldLogExcerpt, v))
}

// LogExcerptContains applies the Contains predicate on the "log_excerpt" field.
func LogExcerptContains(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldContains(FieldLogExcerpt, v))
}

// LogExcerptHasPrefix applies the HasPrefix predicate on the "log_excerpt" field.
func LogExcerptHasPrefix(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldHasPrefix(FieldLogExcerpt, v))
}

// LogExcerptHasSuffix applies the HasSuffix predicate on the "log_excerpt" field.
func LogExcerptHasSuffix(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldHasSuffix(FieldLogExcerpt, v))
}

// LogExcerptIsNil applies the IsNil predicate on the "log_excerpt" field.
func LogExcerptIsNil() predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldIsNull(FieldLogExcerpt))
}

// LogExcerptNotNil applies the NotNil predicate on the "log_excerpt" field.
func LogExcerptNotNil() predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNotNull(FieldLogExcerpt))
}

// LogExcerptEqualFold applies the EqualFold predicate on the "log_excerpt" field.
func LogExcerptEqualFold(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEqualFold(FieldLogExcerpt, v))
}

// LogExcerptContainsFold applies the ContainsFold predicate on the "log_excerpt" field.
func LogExcerptContainsFold(v string) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldContainsFold(FieldLogExcerpt, v))
}

// CreatedAtEQ applies the EQ predicate on the "created_at" field.
func CreatedAtEQ(v time.Time) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldEQ(FieldCreatedAt, v))
}

// CreatedAtNEQ applies the NEQ predicate on the "created_at" field.
func CreatedAtNEQ(v time.Time) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNEQ(FieldCreatedAt, v))
}

// CreatedAtIn applies the In predicate on the "created_at" field.
func CreatedAtIn(vs ...time.Time) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldIn(FieldCreatedAt, vs...))
}

// CreatedAtNotIn applies the NotIn predicate on the "created_at" field.
func CreatedAtNotIn(vs ...time.Time) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldNotIn(FieldCreatedAt, vs...))
}

// CreatedAtGT applies the GT predicate on the "created_at" field.
func CreatedAtGT(v time.Time) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGT(FieldCreatedAt, v))
}

// CreatedAtGTE applies the GTE predicate on the "created_at" field.
func CreatedAtGTE(v time.Time) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldGTE(FieldCreatedAt, v))
}

// CreatedAtLT applies the LT predicate on the "created_at" field.
func CreatedAtLT(v time.Time) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLT(FieldCreatedAt, v))
}

// CreatedAtLTE applies the LTE predicate on the "created_at" field.
func CreatedAtLTE(v time.Time) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.FieldLTE(FieldCreatedAt, v))
}

// HasConversation applies the HasEdge predicate on the "conversation" edge.
func HasConversation() predicate.BuildAttempt {
	return predicate.BuildAttempt(func(s *sql.Selector) {
		step := sqlgraph.NewStep(
			sqlgraph.From(Table, FieldID),
			sqlgraph.Edge(sqlgraph.M2O, true, ConversationTable, ConversationColumn),
		)
		sqlgraph.HasNeighbors(s, step)
	})
}

// HasConversationWith applies the HasEdge predicate on the "conversation" edge with a given conditions (other predicates).
func HasConversationWith(preds ...predicate.Conversation) predicate.BuildAttempt {
	return predicate.BuildAttempt(func(s *sql.Selector) {
		step := newConversationStep()
		sqlgraph.HasNeighborsWith(s, step, func(s *sql.Selector) {
			for _, p := range preds {
				p(s)
			}
		})
	})
}

// And groups predicates with the AND operator between them.
func And(predicates ...predicate.BuildAttempt) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.AndPredicates(predicates...))
}

// Or groups predicates with the OR operator between them.
func Or(predicates ...predicate.BuildAttempt) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.OrPredicates(predicates...))
}

// Not applies the not operator on the given predicate.
func Not(p predicate.BuildAttempt) predicate.BuildAttempt {
	return predicate.BuildAttempt(sql.NotPredicates(p))
}
